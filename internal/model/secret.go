package model

import "time"

// Secret is an encrypted-at-rest credential. Values are AES-256-GCM
// ciphertext; plaintext never leaves the secrets service.
type Secret struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	ValueEnc  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
