package model

import "time"

// ConfigTop marks a (source, identity) pair as "important/VIP". Events whose
// author matches a ConfigTop identity for their source classify as TOP_PING.
type ConfigTop struct {
	ID        int64     `json:"id"`
	Source    Source    `json:"source"`
	Identity  string    `json:"identity"` // email/UPN/userId
	Name      *string   `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
