package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"pulsedesk.app/pulse/internal/model"
)

type outboxStore struct {
	db DBTX
}

const outboxColumns = `id, type, status, payload, thread_id, related_event_id, error, created_at, confirmed_at, sent_at`

func (s *outboxStore) Create(ctx context.Context, rec *model.Outbox) (*model.Outbox, error) {
	status := rec.Status
	if status == "" {
		status = model.OutboxStatusPending
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO outbox (id, type, status, payload, thread_id, related_event_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+outboxColumns,
		rec.ID, rec.Type, status, rec.Payload, rec.ThreadID, rec.RelatedEventID)
	return scanOutbox(row)
}

func (s *outboxStore) GetByID(ctx context.Context, id int64) (*model.Outbox, error) {
	row := s.db.QueryRow(ctx, `SELECT `+outboxColumns+` FROM outbox WHERE id = $1`, id)
	rec, err := scanOutbox(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *outboxStore) ListDispatchable(ctx context.Context, limit int32) ([]model.Outbox, error) {
	// Oldest-first keeps dispatch FIFO-fair so a burst never starves earlier
	// records.
	rows, err := s.db.Query(ctx, `
		SELECT `+outboxColumns+` FROM outbox
		WHERE status = $1 OR status = $2
		ORDER BY created_at ASC LIMIT $3`,
		model.OutboxStatusPending, model.OutboxStatusConfirmed, limit)
	if err != nil {
		return nil, err
	}
	return collectOutbox(rows)
}

func (s *outboxStore) List(ctx context.Context, status *model.OutboxStatus, limit int32) ([]model.Outbox, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != nil {
		rows, err = s.db.Query(ctx, `
			SELECT `+outboxColumns+` FROM outbox
			WHERE status = $1 ORDER BY created_at DESC LIMIT $2`, *status, limit)
	} else {
		rows, err = s.db.Query(ctx, `
			SELECT `+outboxColumns+` FROM outbox
			ORDER BY created_at DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, err
	}
	return collectOutbox(rows)
}

func (s *outboxStore) MarkSent(ctx context.Context, id int64, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE outbox SET status = $2, sent_at = $3, error = NULL WHERE id = $1`,
		id, model.OutboxStatusSent, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *outboxStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE outbox SET status = $2, error = $3 WHERE id = $1`,
		id, model.OutboxStatusFailed, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *outboxStore) Confirm(ctx context.Context, id int64, at time.Time) (*model.Outbox, error) {
	return s.transition(ctx, `
		UPDATE outbox SET status = $2, confirmed_at = $3
		WHERE id = $1 AND status = $4
		RETURNING `+outboxColumns,
		id, model.OutboxStatusConfirmed, at, model.OutboxStatusPending)
}

func (s *outboxStore) Retry(ctx context.Context, id int64) (*model.Outbox, error) {
	// Only FAILED records are retryable; SENT and CANCELED stay terminal.
	return s.transition(ctx, `
		UPDATE outbox SET status = $2, error = NULL
		WHERE id = $1 AND status = $3
		RETURNING `+outboxColumns,
		id, model.OutboxStatusPending, model.OutboxStatusFailed)
}

func (s *outboxStore) Cancel(ctx context.Context, id int64) (*model.Outbox, error) {
	return s.transition(ctx, `
		UPDATE outbox SET status = $2
		WHERE id = $1 AND status IN ($3, $4, $5)
		RETURNING `+outboxColumns,
		id, model.OutboxStatusCanceled,
		model.OutboxStatusPending, model.OutboxStatusConfirmed, model.OutboxStatusFailed)
}

func (s *outboxStore) UpdatePayload(ctx context.Context, id int64, payload json.RawMessage) error {
	_, err := s.db.Exec(ctx, `UPDATE outbox SET payload = $2 WHERE id = $1`, id, payload)
	return err
}

func (s *outboxStore) transition(ctx context.Context, sql string, args ...any) (*model.Outbox, error) {
	rec, err := scanOutbox(s.db.QueryRow(ctx, sql, args...))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	// Distinguish a missing record from one in a non-eligible status.
	if _, getErr := s.GetByID(ctx, extractID(args)); getErr != nil {
		return nil, getErr
	}
	return nil, ErrInvalidTransition
}

func extractID(args []any) int64 {
	if len(args) > 0 {
		if id, ok := args[0].(int64); ok {
			return id
		}
	}
	return 0
}

func collectOutbox(rows pgx.Rows) ([]model.Outbox, error) {
	defer rows.Close()
	var result []model.Outbox
	for rows.Next() {
		rec, err := scanOutbox(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

func scanOutbox(row pgx.Row) (*model.Outbox, error) {
	var rec model.Outbox
	if err := row.Scan(
		&rec.ID, &rec.Type, &rec.Status, &rec.Payload, &rec.ThreadID,
		&rec.RelatedEventID, &rec.Error, &rec.CreatedAt, &rec.ConfirmedAt, &rec.SentAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
