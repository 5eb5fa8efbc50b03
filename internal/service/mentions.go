package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pulsedesk.app/pulse/common/id"
	"pulsedesk.app/pulse/common/logger"
	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/store"
)

const mentionLineMax = 120

// MentionsService rolls recent non-VIP mentions into one batched Notion task
// so individual mentions don't each page an operator.
type MentionsService interface {
	BatchRecent(ctx context.Context) error
}

type mentionsService struct {
	events store.EventStore
	outbox store.OutboxStore
	window time.Duration
	logger *slog.Logger
}

func NewMentionsService(events store.EventStore, outbox store.OutboxStore, window time.Duration, logger *slog.Logger) MentionsService {
	if window <= 0 {
		window = 30 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &mentionsService{
		events: events,
		outbox: outbox,
		window: window,
		logger: logger,
	}
}

// BatchRecent collects MENTION events recorded in the trailing window and
// creates a single NOTION_TASK outbox record for them. Overlapping windows
// may include an event twice; batches are advisory, not exactly-once.
func (s *mentionsService) BatchRecent(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "pulse.mentions"})

	now := time.Now().UTC()
	since := now.Add(-s.window)

	events, err := s.events.ListRecentMentions(ctx, since)
	if err != nil {
		return fmt.Errorf("listing recent mentions: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	var bullets []string
	for i := range events {
		e := &events[i]
		text := truncate(collapseWhitespace(e.Body()), mentionLineMax)
		bullets = append(bullets, fmt.Sprintf("- %s: %s", e.Author(), text))
	}

	payload, err := json.Marshal(model.NotionPayload{
		Title:   fmt.Sprintf("Mentions (%d) — %s", len(events), now.Format("15:04:05 UTC")),
		Summary: strings.Join(bullets, "\n"),
		Source:  "MENTIONS_BATCH",
	})
	if err != nil {
		return fmt.Errorf("marshaling mentions payload: %w", err)
	}

	if _, err := s.outbox.Create(ctx, &model.Outbox{
		ID:      id.New(),
		Type:    model.OutboxTypeNotionTask,
		Payload: payload,
	}); err != nil {
		return fmt.Errorf("creating mentions outbox record: %w", err)
	}

	s.logger.InfoContext(ctx, "mentions batched", "count", len(events), "window", s.window)
	return nil
}
