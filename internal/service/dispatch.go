package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"pulsedesk.app/pulse/common/logger"
	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/sender"
	"pulsedesk.app/pulse/internal/store"
)

// DispatchService drains the outbox: each run picks the oldest dispatchable
// records and hands them to the sender, one commit per record.
type DispatchService interface {
	DispatchBatch(ctx context.Context) (DispatchStats, error)
}

type DispatchStats struct {
	Picked int
	Sent   int
	Failed int
}

type dispatchService struct {
	outbox    store.OutboxStore
	sender    sender.Sender
	batchSize int32
	logger    *slog.Logger
}

func NewDispatchService(outbox store.OutboxStore, snd sender.Sender, batchSize int, logger *slog.Logger) DispatchService {
	if batchSize <= 0 {
		batchSize = 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &dispatchService{
		outbox:    outbox,
		sender:    snd,
		batchSize: int32(batchSize),
		logger:    logger,
	}
}

func (s *dispatchService) DispatchBatch(ctx context.Context) (DispatchStats, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "pulse.dispatch"})

	records, err := s.outbox.ListDispatchable(ctx, s.batchSize)
	if err != nil {
		return DispatchStats{}, fmt.Errorf("listing dispatchable outbox records: %w", err)
	}

	stats := DispatchStats{Picked: len(records)}
	for i := range records {
		rec := &records[i]
		recCtx := logger.WithLogFields(ctx, logger.LogFields{OutboxID: &rec.ID})

		if err := s.dispatchOne(recCtx, rec); err != nil {
			stats.Failed++
			s.logger.ErrorContext(recCtx, "outbox dispatch failed", "type", rec.Type, "error", err)
			if markErr := s.outbox.MarkFailed(recCtx, rec.ID, logger.Truncate(err.Error(), 500)); markErr != nil {
				s.logger.ErrorContext(recCtx, "failed to mark outbox record failed", "error", markErr)
			}
			continue
		}

		if err := s.outbox.MarkSent(recCtx, rec.ID, time.Now().UTC()); err != nil {
			s.logger.ErrorContext(recCtx, "failed to mark outbox record sent", "error", err)
			continue
		}
		stats.Sent++
		s.logger.InfoContext(recCtx, "outbox record sent", "type", rec.Type)
	}

	return stats, nil
}

func (s *dispatchService) dispatchOne(ctx context.Context, rec *model.Outbox) error {
	switch rec.Type {
	case model.OutboxTypeTelegramNotify:
		var payload model.TelegramPayload
		if err := json.Unmarshal(rec.Payload, &payload); err != nil {
			return fmt.Errorf("decoding telegram payload: %w", err)
		}
		// Downstream APIs reject empty bodies; a degenerate payload still ships.
		if payload.Text == "" {
			payload.Text = "Notification"
		}
		return s.sender.Telegram(ctx, payload)

	case model.OutboxTypeNotionTask:
		var payload model.NotionPayload
		if err := json.Unmarshal(rec.Payload, &payload); err != nil {
			return fmt.Errorf("decoding notion payload: %w", err)
		}
		if payload.Title == "" {
			payload.Title = "Task"
		}
		page, err := s.sender.Notion(ctx, payload)
		if err != nil {
			return err
		}
		if page != nil && page.URL != "" {
			payload.NotionURL = page.URL
			updated, err := json.Marshal(payload)
			if err != nil {
				return fmt.Errorf("encoding annotated notion payload: %w", err)
			}
			if err := s.outbox.UpdatePayload(ctx, rec.ID, updated); err != nil {
				// The page exists; losing the URL annotation is not worth a
				// FAILED status and a duplicate page on retry.
				s.logger.WarnContext(ctx, "failed to annotate notion url", "error", err)
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown outbox type %q", rec.Type)
	}
}
