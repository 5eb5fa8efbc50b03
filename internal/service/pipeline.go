package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pulsedesk.app/pulse/common/id"
	"pulsedesk.app/pulse/common/logger"
	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/store"
)

const (
	telegramTextMax = 1000
	notionTitleMax  = 120
)

// PipelineService runs the classification pipeline for a single stored event.
type PipelineService interface {
	ProcessEvent(ctx context.Context, eventID int64) error
}

type pipelineService struct {
	events   store.EventStore
	txRunner TxRunner
	classify ClassifyService
	logger   *slog.Logger
}

func NewPipelineService(events store.EventStore, txRunner TxRunner, classify ClassifyService, logger *slog.Logger) PipelineService {
	if logger == nil {
		logger = slog.Default()
	}
	return &pipelineService{
		events:   events,
		txRunner: txRunner,
		classify: classify,
		logger:   logger,
	}
}

// ProcessEvent classifies the event and, in one transaction, persists the
// derived fields, creates any outbox records the intent calls for, and
// advances the thread's last-seen cursor. A missing event is a no-op so a
// stale queue message never wedges the worker.
func (s *pipelineService) ProcessEvent(ctx context.Context, eventID int64) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.WarnContext(ctx, "event not found, skipping", "event_id", eventID)
			return nil
		}
		return fmt.Errorf("loading event: %w", err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ThreadID: &event.ThreadID,
		EventID:  &event.ID,
		Source:   logger.Ptr(string(event.Source)),
	})

	verdict, err := s.classify.Classify(ctx, event)
	if err != nil {
		return fmt.Errorf("classifying event: %w", err)
	}

	now := time.Now().UTC()

	if err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		if err := sp.Events().SetAnalysis(ctx, event.ID, verdict.Intent, verdict.HasMention, verdict.SalesSignal, verdict.IsFromTop, now); err != nil {
			return fmt.Errorf("persisting analysis: %w", err)
		}

		if err := s.createOutbox(ctx, sp, event, verdict); err != nil {
			return err
		}

		if err := sp.LastSeen().Upsert(ctx, &model.LastSeen{
			ThreadID:       event.ThreadID,
			LastExternalID: event.ExternalID,
			LastTS:         event.TS,
		}); err != nil {
			return fmt.Errorf("advancing last seen: %w", err)
		}

		return nil
	}); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "event classified",
		"intent", verdict.Intent,
		"has_mention", verdict.HasMention,
		"sales_signal", verdict.SalesSignal,
		"is_from_top", verdict.IsFromTop)
	return nil
}

func (s *pipelineService) createOutbox(ctx context.Context, sp StoreProvider, event *model.Event, verdict Classification) error {
	switch verdict.Intent {
	case model.IntentTopPing:
		text := truncate(collapseWhitespace(fmt.Sprintf("%s: %s", event.Author(), event.Body())), telegramTextMax)
		payload, err := json.Marshal(model.TelegramPayload{
			Title: "Top ping",
			Text:  text,
		})
		if err != nil {
			return fmt.Errorf("marshaling telegram payload: %w", err)
		}
		if _, err := sp.Outbox().Create(ctx, &model.Outbox{
			ID:             id.New(),
			Type:           model.OutboxTypeTelegramNotify,
			Payload:        payload,
			ThreadID:       &event.ThreadID,
			RelatedEventID: &event.ID,
		}); err != nil {
			return fmt.Errorf("creating telegram outbox record: %w", err)
		}

	case model.IntentDM, model.IntentMention:
		// The cap applies to the event text alone, the prefix rides on top.
		title := "Reply"
		if body := collapseWhitespace(event.Body()); body != "" {
			title = "Reply: " + truncate(body, notionTitleMax)
		}
		payload, err := json.Marshal(model.NotionPayload{
			Title:    title,
			Summary:  truncate(collapseWhitespace(fmt.Sprintf("%s: %s", event.Author(), event.Body())), telegramTextMax),
			Source:   string(event.Source),
			ThreadID: &event.ThreadID,
			EventID:  &event.ID,
		})
		if err != nil {
			return fmt.Errorf("marshaling notion payload: %w", err)
		}
		if _, err := sp.Outbox().Create(ctx, &model.Outbox{
			ID:             id.New(),
			Type:           model.OutboxTypeNotionTask,
			Payload:        payload,
			ThreadID:       &event.ThreadID,
			RelatedEventID: &event.ID,
		}); err != nil {
			return fmt.Errorf("creating notion outbox record: %w", err)
		}

	case model.IntentOther:
		// No outbound side effect; the cursor still advances.
	}

	return nil
}
