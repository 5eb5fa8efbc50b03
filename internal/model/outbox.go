package model

import (
	"encoding/json"
	"time"
)

// OutboxType selects the sender capability for a record. Dispatch switches
// over this exhaustively; adding a variant without a sender arm is a bug the
// dispatcher surfaces as a FAILED record rather than a silent skip.
type OutboxType string

const (
	OutboxTypeTelegramNotify OutboxType = "TELEGRAM_NOTIFY"
	OutboxTypeNotionTask     OutboxType = "NOTION_TASK"
)

// OutboxStatus is the dispatch state machine:
//
//	PENDING -> CONFIRMED (operator, advisory) -> SENT | FAILED
//	FAILED  -> PENDING (operator retry only)
//	PENDING | CONFIRMED | FAILED -> CANCELED (operator, terminal)
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusConfirmed OutboxStatus = "CONFIRMED"
	OutboxStatusSent      OutboxStatus = "SENT"
	OutboxStatusFailed    OutboxStatus = "FAILED"
	OutboxStatusCanceled  OutboxStatus = "CANCELED"
)

// Outbox is a durable unit of outbound work. Created by the pipeline or the
// mentions batcher; mutated only by the dispatcher or an operator action;
// never auto-deleted.
type Outbox struct {
	ID             int64           `json:"id"`
	Type           OutboxType      `json:"type"`
	Status         OutboxStatus    `json:"status"`
	Payload        json.RawMessage `json:"payload"`
	ThreadID       *int64          `json:"thread_id,omitempty"`
	RelatedEventID *int64          `json:"related_event_id,omitempty"`
	Error          *string         `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	ConfirmedAt    *time.Time      `json:"confirmed_at,omitempty"`
	SentAt         *time.Time      `json:"sent_at,omitempty"`
}

// TelegramPayload is the payload shape for TELEGRAM_NOTIFY records.
type TelegramPayload struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// NotionPayload is the payload shape for NOTION_TASK records.
type NotionPayload struct {
	Title     string `json:"title"`
	Summary   string `json:"summary,omitempty"`
	Source    string `json:"source,omitempty"`
	ThreadID  *int64 `json:"thread_id,omitempty"`
	EventID   *int64 `json:"event_id,omitempty"`
	NotionURL string `json:"notion_url,omitempty"`
}
