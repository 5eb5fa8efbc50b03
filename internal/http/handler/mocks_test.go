package handler_test

import (
	"context"
	"encoding/json"
	"time"

	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/service"
	"pulsedesk.app/pulse/internal/store"
)

type mockIngestService struct {
	ingestFn       func(ctx context.Context, params service.IngestParams) (*service.IngestResult, error)
	capturedParams *service.IngestParams
}

func (m *mockIngestService) Ingest(ctx context.Context, params service.IngestParams) (*service.IngestResult, error) {
	m.capturedParams = &params
	if m.ingestFn != nil {
		return m.ingestFn(ctx, params)
	}
	return &service.IngestResult{
		Thread:   &model.Thread{ID: 10},
		Event:    &model.Event{ID: 42, ThreadID: 10},
		Enqueued: true,
	}, nil
}

type mockOutboxStore struct {
	listFn    func(ctx context.Context, status *model.OutboxStatus, limit int32) ([]model.Outbox, error)
	confirmFn func(ctx context.Context, id int64, at time.Time) (*model.Outbox, error)
	retryFn   func(ctx context.Context, id int64) (*model.Outbox, error)
	cancelFn  func(ctx context.Context, id int64) (*model.Outbox, error)
}

func (m *mockOutboxStore) Create(ctx context.Context, rec *model.Outbox) (*model.Outbox, error) {
	return rec, nil
}

func (m *mockOutboxStore) GetByID(ctx context.Context, id int64) (*model.Outbox, error) {
	return nil, store.ErrNotFound
}

func (m *mockOutboxStore) ListDispatchable(ctx context.Context, limit int32) ([]model.Outbox, error) {
	return nil, nil
}

func (m *mockOutboxStore) List(ctx context.Context, status *model.OutboxStatus, limit int32) ([]model.Outbox, error) {
	if m.listFn != nil {
		return m.listFn(ctx, status, limit)
	}
	return nil, nil
}

func (m *mockOutboxStore) MarkSent(ctx context.Context, id int64, at time.Time) error {
	return nil
}

func (m *mockOutboxStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	return nil
}

func (m *mockOutboxStore) Confirm(ctx context.Context, id int64, at time.Time) (*model.Outbox, error) {
	if m.confirmFn != nil {
		return m.confirmFn(ctx, id, at)
	}
	return nil, store.ErrNotFound
}

func (m *mockOutboxStore) Retry(ctx context.Context, id int64) (*model.Outbox, error) {
	if m.retryFn != nil {
		return m.retryFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockOutboxStore) Cancel(ctx context.Context, id int64) (*model.Outbox, error) {
	if m.cancelFn != nil {
		return m.cancelFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockOutboxStore) UpdatePayload(ctx context.Context, id int64, payload json.RawMessage) error {
	return nil
}
