package model

import (
	"encoding/json"
	"time"
)

// Intent is the classifier's verdict for an event, in strict priority order:
// TOP_PING > DM > MENTION > OTHER.
type Intent string

const (
	IntentTopPing Intent = "TOP_PING"
	IntentDM      Intent = "DM"
	IntentMention Intent = "MENTION"
	IntentOther   Intent = "OTHER"
)

// Event is one inbound message/meeting/mail item attributed to a Thread.
// (source, external_id) is globally unique so re-ingestion is a no-op.
// Created once by ingestion; derived fields are set once by the classifier;
// never deleted.
type Event struct {
	ID         int64           `json:"id"`
	ThreadID   int64           `json:"thread_id"`
	Source     Source          `json:"source"`
	ExternalID string          `json:"external_id"`
	TS         time.Time       `json:"ts"`
	AuthorID   *string         `json:"author_id,omitempty"`
	AuthorName *string         `json:"author_name,omitempty"`
	Text       *string         `json:"text,omitempty"`
	Mentions   []string        `json:"mentions"`
	IsDM       bool            `json:"is_dm"`
	Raw        json.RawMessage `json:"raw,omitempty"`

	// Derived fields, populated by the classify pipeline.
	Intent          *Intent    `json:"intent,omitempty"`
	HasMention      *bool      `json:"has_mention,omitempty"`
	SalesSignal     bool       `json:"sales_signal"`
	IsFromTop       bool       `json:"is_from_top"`
	AnalyzedAt      *time.Time `json:"analyzed_at,omitempty"`
	ProcessingError *string    `json:"processing_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Author returns the best display identity for the event's sender.
func (e *Event) Author() string {
	if e.AuthorName != nil && *e.AuthorName != "" {
		return *e.AuthorName
	}
	if e.AuthorID != nil && *e.AuthorID != "" {
		return *e.AuthorID
	}
	return "Unknown"
}

// Body returns the event text or "" when absent.
func (e *Event) Body() string {
	if e.Text == nil {
		return ""
	}
	return *e.Text
}
