package sender

import (
	"context"
	"log/slog"

	"pulsedesk.app/pulse/internal/model"
)

// LogSender logs payloads instead of delivering them. Default in development
// so local runs never hit real channels.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Telegram(ctx context.Context, payload model.TelegramPayload) error {
	s.logger.InfoContext(ctx, "telegram notify (log mode)", "title", payload.Title, "text", payload.Text)
	return nil
}

func (s *LogSender) Notion(ctx context.Context, payload model.NotionPayload) (*NotionPage, error) {
	s.logger.InfoContext(ctx, "notion task (log mode)", "title", payload.Title, "source", payload.Source)
	return &NotionPage{}, nil
}
