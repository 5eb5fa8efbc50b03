package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"pulsedesk.app/pulse/internal/model"
)

type secretStore struct {
	db DBTX
}

func (s *secretStore) Upsert(ctx context.Context, secret *model.Secret) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO secrets (id, key, value_enc)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value_enc = EXCLUDED.value_enc, updated_at = now()`,
		secret.ID, secret.Key, secret.ValueEnc)
	return err
}

func (s *secretStore) GetByKey(ctx context.Context, key string) (*model.Secret, error) {
	var secret model.Secret
	err := s.db.QueryRow(ctx, `
		SELECT id, key, value_enc, created_at, updated_at
		FROM secrets WHERE key = $1`, key).
		Scan(&secret.ID, &secret.Key, &secret.ValueEnc, &secret.CreatedAt, &secret.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &secret, nil
}

func (s *secretStore) DeleteByKey(ctx context.Context, key string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM secrets WHERE key = $1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *secretStore) List(ctx context.Context) ([]model.Secret, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, key, created_at, updated_at FROM secrets ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Secret
	for rows.Next() {
		var secret model.Secret
		if err := rows.Scan(&secret.ID, &secret.Key, &secret.CreatedAt, &secret.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, secret)
	}
	return result, rows.Err()
}
