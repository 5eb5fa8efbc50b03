package sender

import (
	"context"
	"log/slog"

	"pulsedesk.app/pulse/core/config"
	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/secrets"
)

// RealSender delivers through the Telegram and Notion HTTP clients.
type RealSender struct {
	telegram *TelegramClient
	notion   *NotionClient
}

func NewRealSender(cfg config.SenderConfig, secretSvc *secrets.Service) *RealSender {
	return &RealSender{
		telegram: NewTelegramClient(TelegramClientOptions{
			BaseURL: cfg.TelegramBaseURL,
			Secrets: secretSvc,
		}),
		notion: NewNotionClient(NotionClientOptions{
			BaseURL: cfg.NotionBaseURL,
			Secrets: secretSvc,
		}),
	}
}

func (s *RealSender) Telegram(ctx context.Context, payload model.TelegramPayload) error {
	return s.telegram.Send(ctx, payload)
}

func (s *RealSender) Notion(ctx context.Context, payload model.NotionPayload) (*NotionPage, error) {
	return s.notion.CreatePage(ctx, payload)
}

// New selects the sender implementation for the configured mode.
func New(cfg config.SenderConfig, secretSvc *secrets.Service, logger *slog.Logger) Sender {
	if cfg.Mode == config.SenderModeReal {
		return NewRealSender(cfg, secretSvc)
	}
	return NewLogSender(logger)
}
