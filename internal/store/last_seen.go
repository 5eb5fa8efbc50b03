package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"pulsedesk.app/pulse/internal/model"
)

type lastSeenStore struct {
	db DBTX
}

func (s *lastSeenStore) Upsert(ctx context.Context, cursor *model.LastSeen) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO last_seen (thread_id, last_external_id, last_ts)
		VALUES ($1, $2, $3)
		ON CONFLICT (thread_id) DO UPDATE
		SET last_external_id = EXCLUDED.last_external_id,
		    last_ts = EXCLUDED.last_ts,
		    updated_at = now()`,
		cursor.ThreadID, cursor.LastExternalID, cursor.LastTS)
	return err
}

func (s *lastSeenStore) GetByThread(ctx context.Context, threadID int64) (*model.LastSeen, error) {
	var cursor model.LastSeen
	err := s.db.QueryRow(ctx, `
		SELECT thread_id, last_external_id, last_ts, updated_at
		FROM last_seen WHERE thread_id = $1`, threadID).
		Scan(&cursor.ThreadID, &cursor.LastExternalID, &cursor.LastTS, &cursor.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cursor, nil
}
