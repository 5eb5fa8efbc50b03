package service

import (
	"log/slog"
	"time"

	"pulsedesk.app/pulse/core/config"
	"pulsedesk.app/pulse/internal/queue"
	"pulsedesk.app/pulse/internal/sender"
	"pulsedesk.app/pulse/internal/store"
)

type Services struct {
	stores   *store.Stores
	txRunner TxRunner
	producer queue.Producer
	sender   sender.Sender
	jobs     config.JobsConfig
	logger   *slog.Logger
}

func NewServices(stores *store.Stores, txRunner TxRunner, producer queue.Producer, snd sender.Sender, jobs config.JobsConfig, logger *slog.Logger) *Services {
	return &Services{
		stores:   stores,
		txRunner: txRunner,
		producer: producer,
		sender:   snd,
		jobs:     jobs,
		logger:   logger,
	}
}

func (s *Services) Ingest() IngestService {
	return NewIngestService(s.txRunner, s.producer, s.logger)
}

func (s *Services) Classify() ClassifyService {
	return NewClassifyService(s.stores.ConfigTop())
}

func (s *Services) Pipeline() PipelineService {
	return NewPipelineService(s.stores.Events(), s.txRunner, s.Classify(), s.logger)
}

func (s *Services) Dispatch() DispatchService {
	return NewDispatchService(s.stores.Outbox(), s.sender, s.jobs.DispatchBatchSize, s.logger)
}

func (s *Services) Digest() DigestService {
	return NewDigestService(s.stores.Threads(), s.stores.Events(), s.txRunner, s.logger)
}

func (s *Services) Mentions() MentionsService {
	return NewMentionsService(s.stores.Events(), s.stores.Outbox(), time.Duration(s.jobs.MentionsWindowMins)*time.Minute, s.logger)
}
