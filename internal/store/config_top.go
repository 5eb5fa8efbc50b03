package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"pulsedesk.app/pulse/internal/model"
)

type configTopStore struct {
	db DBTX
}

const configTopColumns = `id, source, identity, name, created_at`

func (s *configTopStore) Upsert(ctx context.Context, rec *model.ConfigTop) (*model.ConfigTop, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO config_top (id, source, identity, name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source, identity) DO UPDATE
		SET name = COALESCE(EXCLUDED.name, config_top.name)
		RETURNING `+configTopColumns,
		rec.ID, rec.Source, rec.Identity, rec.Name)
	return scanConfigTop(row)
}

func (s *configTopStore) MatchesAny(ctx context.Context, source model.Source, identities []string) (bool, error) {
	if len(identities) == 0 {
		return false, nil
	}
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM config_top
			WHERE source = $1 AND identity = ANY($2)
		)`, source, identities).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *configTopStore) List(ctx context.Context) ([]model.ConfigTop, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+configTopColumns+` FROM config_top
		ORDER BY source, identity`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ConfigTop
	for rows.Next() {
		rec, err := scanConfigTop(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

func (s *configTopStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM config_top WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanConfigTop(row pgx.Row) (*model.ConfigTop, error) {
	var rec model.ConfigTop
	if err := row.Scan(&rec.ID, &rec.Source, &rec.Identity, &rec.Name, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
