package model

import (
	"encoding/json"
	"time"
)

// Thread is a conversation/container entity in a source system, addressed by
// its external identifier. One Thread owns many Events.
type Thread struct {
	ID                   int64           `json:"id"`
	Source               Source          `json:"source"`
	ExternalID           string          `json:"external_id"`
	Title                *string         `json:"title,omitempty"`
	Participants         json.RawMessage `json:"participants,omitempty"`
	LastSummaryMD        *string         `json:"last_summary_md,omitempty"`
	LastSummaryUpdatedAt *time.Time      `json:"last_summary_updated_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// LastSeen is the per-thread cursor recording the most recently processed
// event. Overwritten on every event the pipeline handles for the thread.
type LastSeen struct {
	ThreadID       int64     `json:"thread_id"`
	LastExternalID string    `json:"last_external_id"`
	LastTS         time.Time `json:"last_ts"`
	UpdatedAt      time.Time `json:"updated_at"`
}
