package dto

import (
	"encoding/json"
	"time"
)

// FieldIssue points at a single invalid request field.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// IngestRequest is the webhook payload pushed at POST /ingest/:source.
type IngestRequest struct {
	ThreadExternalID string          `json:"threadExternalId"`
	ThreadTitle      *string         `json:"threadTitle,omitempty"`
	Participants     json.RawMessage `json:"participants,omitempty"`
	EventExternalID  string          `json:"eventExternalId"`
	TS               string          `json:"ts"`
	AuthorID         *string         `json:"authorId,omitempty"`
	AuthorName       *string         `json:"authorName,omitempty"`
	Text             *string         `json:"text,omitempty"`
	Mentions         []string        `json:"mentions,omitempty"`
	IsDM             bool            `json:"isDm,omitempty"`
	Raw              json.RawMessage `json:"raw,omitempty"`
}

// Validate returns one issue per invalid field, empty when the request is
// acceptable.
func (r *IngestRequest) Validate() []FieldIssue {
	var issues []FieldIssue
	if r.ThreadExternalID == "" {
		issues = append(issues, FieldIssue{Field: "threadExternalId", Message: "must not be empty"})
	}
	if r.EventExternalID == "" {
		issues = append(issues, FieldIssue{Field: "eventExternalId", Message: "must not be empty"})
	}
	if r.TS == "" {
		issues = append(issues, FieldIssue{Field: "ts", Message: "must not be empty"})
	} else if _, err := time.Parse(time.RFC3339, r.TS); err != nil {
		issues = append(issues, FieldIssue{Field: "ts", Message: "must be an RFC3339 timestamp"})
	}
	return issues
}

// Timestamp parses the validated ts field.
func (r *IngestRequest) Timestamp() time.Time {
	ts, _ := time.Parse(time.RFC3339, r.TS)
	return ts
}

type IngestResponse struct {
	OK      bool  `json:"ok"`
	EventID int64 `json:"eventId"`
	Deduped bool  `json:"deduped,omitempty"`
}
