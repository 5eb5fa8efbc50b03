package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"pulsedesk.app/pulse/internal/model"
)

type digestStore struct {
	db DBTX
}

const digestColumns = `id, thread_id, date, content_md, created_at, updated_at`

func (s *digestStore) Upsert(ctx context.Context, digest *model.DailyDigest) (*model.DailyDigest, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO daily_digests (id, thread_id, date, content_md)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (thread_id, date) DO UPDATE
		SET content_md = EXCLUDED.content_md, updated_at = now()
		RETURNING `+digestColumns,
		digest.ID, digest.ThreadID, digest.Date, digest.ContentMD)
	return scanDigest(row)
}

func (s *digestStore) GetLatestByThread(ctx context.Context, threadID int64) (*model.DailyDigest, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+digestColumns+` FROM daily_digests
		WHERE thread_id = $1 ORDER BY date DESC LIMIT 1`, threadID)
	digest, err := scanDigest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return digest, nil
}

func scanDigest(row pgx.Row) (*model.DailyDigest, error) {
	var d model.DailyDigest
	if err := row.Scan(&d.ID, &d.ThreadID, &d.Date, &d.ContentMD, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
