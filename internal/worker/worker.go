package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pulsedesk.app/pulse/common/logger"
	"pulsedesk.app/pulse/internal/queue"
	"pulsedesk.app/pulse/internal/service"
	"pulsedesk.app/pulse/internal/store"
)

type Config struct {
	MaxAttempts int
}

// Worker drains the classification stream: one message per stored event,
// processed through the pipeline and acked.
type Worker struct {
	consumer *queue.RedisConsumer
	pipeline service.PipelineService
	events   store.EventStore
	cfg      Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer *queue.RedisConsumer, pipeline service.PipelineService, events store.EventStore, cfg Config) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Worker{
		consumer:  consumer,
		pipeline:  pipeline,
		events:    events,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "message processing failed",
				"error", err,
				"message_id", msg.ID,
				"event_id", msg.EventID)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"message_id", msg.ID,
				"event_id", msg.EventID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage runs the classification pipeline for one message. Exported
// so it can be reused by the reclaimer.
//
// A pipeline failure is recorded on the event row and the message is acked:
// classification is never retried automatically, the event stays visible in
// the admin surface with its processing error. Only a failure to record the
// failure (database unreachable) bubbles up for requeue.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ThreadID: &msg.ThreadID,
		EventID:  &msg.EventID,
		Source:   logger.Ptr(string(msg.Source)),
	})

	slog.InfoContext(ctx, "processing message",
		"message_id", msg.ID,
		"attempt", msg.Attempt)

	if procErr := w.pipeline.ProcessEvent(ctx, msg.EventID); procErr != nil {
		slog.WarnContext(ctx, "pipeline failed, recording error on event", "error", procErr)
		if markErr := w.events.MarkFailed(ctx, msg.EventID, logger.Truncate(procErr.Error(), 500)); markErr != nil {
			return fmt.Errorf("recording processing error: %w", markErr)
		}
	}

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// The reclaimer will pick the message up again; processing is
		// idempotent so a second pass is safe.
		slog.WarnContext(ctx, "failed to ACK message",
			"error", err,
			"message_id", msg.ID)
	}

	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"event_id", msg.EventID,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message",
		"message_id", msg.ID,
		"event_id", msg.EventID,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
