package model

import "time"

// DailyDigest is one rendered markdown rollup per (thread, date).
// Upserted by the digest builder; re-running for the same day overwrites.
type DailyDigest struct {
	ID        int64     `json:"id"`
	ThreadID  int64     `json:"thread_id"`
	Date      time.Time `json:"date"` // UTC midnight of the digested day
	ContentMD string    `json:"content_md"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
