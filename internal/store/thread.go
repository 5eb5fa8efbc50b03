package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"pulsedesk.app/pulse/internal/model"
)

type threadStore struct {
	db DBTX
}

const threadColumns = `id, source, external_id, title, participants, last_summary_md, last_summary_updated_at, created_at, updated_at`

func (s *threadStore) Upsert(ctx context.Context, thread *model.Thread) (*model.Thread, error) {
	// COALESCE keeps the existing title when the incoming one is NULL, so a
	// payload without threadTitle never blanks a previously known title.
	row := s.db.QueryRow(ctx, `
		INSERT INTO threads (id, source, external_id, title, participants)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source, external_id) DO UPDATE
		SET title = COALESCE(EXCLUDED.title, threads.title), updated_at = now()
		RETURNING `+threadColumns,
		thread.ID, thread.Source, thread.ExternalID, thread.Title, thread.Participants)
	return scanThread(row)
}

func (s *threadStore) GetByID(ctx context.Context, id int64) (*model.Thread, error) {
	row := s.db.QueryRow(ctx, `SELECT `+threadColumns+` FROM threads WHERE id = $1`, id)
	t, err := scanThread(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *threadStore) ListRecent(ctx context.Context, limit int32) ([]model.Thread, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+threadColumns+` FROM threads
		ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Thread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

func (s *threadStore) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM threads ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *threadStore) UpdateSummary(ctx context.Context, id int64, contentMD string, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE threads
		SET last_summary_md = $2, last_summary_updated_at = $3, updated_at = now()
		WHERE id = $1`, id, contentMD, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanThread(row pgx.Row) (*model.Thread, error) {
	var t model.Thread
	if err := row.Scan(
		&t.ID, &t.Source, &t.ExternalID, &t.Title, &t.Participants,
		&t.LastSummaryMD, &t.LastSummaryUpdatedAt, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
