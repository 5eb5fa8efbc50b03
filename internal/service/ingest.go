package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"pulsedesk.app/pulse/common/id"
	"pulsedesk.app/pulse/common/logger"
	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/queue"
)

type IngestParams struct {
	Source           model.Source
	ThreadExternalID string
	ThreadTitle      *string
	Participants     json.RawMessage
	EventExternalID  string
	TS               time.Time
	AuthorID         *string
	AuthorName       *string
	Text             *string
	Mentions         []string
	IsDM             bool
	Raw              json.RawMessage
	TraceID          *string
}

type IngestResult struct {
	Thread   *model.Thread
	Event    *model.Event
	Enqueued bool
	Deduped  bool
}

type IngestService interface {
	Ingest(ctx context.Context, params IngestParams) (*IngestResult, error)
}

type ingestService struct {
	txRunner TxRunner
	queue    queue.Producer
	logger   *slog.Logger
}

func NewIngestService(txRunner TxRunner, queue queue.Producer, logger *slog.Logger) IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ingestService{
		txRunner: txRunner,
		queue:    queue,
		logger:   logger,
	}
}

// Ingest upserts the thread, records the event exactly once per
// (source, external id), and enqueues newly created events for
// classification. Replays return the stored event with Deduped set.
func (s *ingestService) Ingest(ctx context.Context, params IngestParams) (*IngestResult, error) {
	if params.ThreadExternalID == "" || params.EventExternalID == "" {
		return nil, fmt.Errorf("thread and event external ids are required")
	}
	if params.TS.IsZero() {
		return nil, fmt.Errorf("ts is required")
	}

	mentions := params.Mentions
	if mentions == nil {
		mentions = []string{}
	}

	var (
		thread  *model.Thread
		event   *model.Event
		created bool
	)

	if err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		thread, err = sp.Threads().Upsert(ctx, &model.Thread{
			ID:           id.New(),
			Source:       params.Source,
			ExternalID:   params.ThreadExternalID,
			Title:        params.ThreadTitle,
			Participants: params.Participants,
		})
		if err != nil {
			return fmt.Errorf("upserting thread: %w", err)
		}

		event, created, err = sp.Events().CreateOrGet(ctx, &model.Event{
			ID:         id.New(),
			ThreadID:   thread.ID,
			Source:     params.Source,
			ExternalID: params.EventExternalID,
			TS:         params.TS,
			AuthorID:   params.AuthorID,
			AuthorName: params.AuthorName,
			Text:       params.Text,
			Mentions:   mentions,
			IsDM:       params.IsDM,
			Raw:        params.Raw,
		})
		if err != nil {
			return fmt.Errorf("creating event: %w", err)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ThreadID: &thread.ID,
		EventID:  &event.ID,
	})

	enqueued := false
	if created {
		if err := s.queue.Enqueue(ctx, queue.EventMessage{
			EventID:  event.ID,
			ThreadID: thread.ID,
			Source:   params.Source,
			TraceID:  params.TraceID,
			Attempt:  1,
		}); err != nil {
			// The event row is durable; an unprocessed event is recoverable,
			// a failed ingest response is not.
			s.logger.ErrorContext(ctx, "failed to enqueue event for classification", "error", err)
		} else {
			enqueued = true
		}
	} else {
		s.logger.InfoContext(ctx, "duplicate event deduped", "external_id", params.EventExternalID, "source", params.Source)
	}

	return &IngestResult{
		Thread:   thread,
		Event:    event,
		Enqueued: enqueued,
		Deduped:  !created,
	}, nil
}
