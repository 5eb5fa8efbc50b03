// Package sender delivers outbox payloads to their downstream channels.
package sender

import (
	"context"

	"pulsedesk.app/pulse/internal/model"
)

// NotionPage identifies a created Notion page.
type NotionPage struct {
	PageID string
	URL    string
}

// Sender delivers one payload per call. Implementations are responsible for
// their own retry policy; a returned error means delivery definitively failed.
type Sender interface {
	Telegram(ctx context.Context, payload model.TelegramPayload) error
	Notion(ctx context.Context, payload model.NotionPayload) (*NotionPage, error)
}
