package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"pulsedesk.app/pulse/internal/model"
)

type eventStore struct {
	db DBTX
}

const eventColumns = `id, thread_id, source, external_id, ts, author_id, author_name, body, mentions, is_dm, raw,
	intent, has_mention, sales_signal, is_from_top, analyzed_at, processing_error, created_at`

func (s *eventStore) CreateOrGet(ctx context.Context, event *model.Event) (*model.Event, bool, error) {
	mentions := event.Mentions
	if mentions == nil {
		mentions = []string{}
	}
	// DO UPDATE on the conflict target is a no-op write that lets RETURNING
	// hand back the existing row; created is detected by ID equality.
	row := s.db.QueryRow(ctx, `
		INSERT INTO events (id, thread_id, source, external_id, ts, author_id, author_name, body, mentions, is_dm, raw)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (source, external_id) DO UPDATE SET external_id = events.external_id
		RETURNING `+eventColumns,
		event.ID, event.ThreadID, event.Source, event.ExternalID, event.TS,
		event.AuthorID, event.AuthorName, event.Text, mentions, event.IsDM, event.Raw)
	got, err := scanEvent(row)
	if err != nil {
		return nil, false, err
	}
	created := got.ID == event.ID
	return got, created, nil
}

func (s *eventStore) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	row := s.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ev, nil
}

func (s *eventStore) SetAnalysis(ctx context.Context, id int64, intent model.Intent, hasMention, salesSignal, isFromTop bool, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE events
		SET intent = $2, has_mention = $3, sales_signal = $4, is_from_top = $5,
		    analyzed_at = $6, processing_error = NULL
		WHERE id = $1`, id, intent, hasMention, salesSignal, isFromTop, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *eventStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := s.db.Exec(ctx, `UPDATE events SET processing_error = $2 WHERE id = $1`, id, errMsg)
	return err
}

func (s *eventStore) ListByThread(ctx context.Context, threadID int64, limit int32) ([]model.Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE thread_id = $1 ORDER BY ts DESC LIMIT $2`, threadID, limit)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (s *eventStore) ListByThreadBetween(ctx context.Context, threadID int64, from, to time.Time) ([]model.Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE thread_id = $1 AND ts >= $2 AND ts < $3
		ORDER BY ts ASC`, threadID, from, to)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (s *eventStore) ListRecentMentions(ctx context.Context, since time.Time) ([]model.Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE created_at >= $1 AND is_from_top = false AND intent = $2
		ORDER BY ts ASC`, since, model.IntentMention)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	defer rows.Close()
	var result []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ev)
	}
	return result, rows.Err()
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var ev model.Event
	if err := row.Scan(
		&ev.ID, &ev.ThreadID, &ev.Source, &ev.ExternalID, &ev.TS,
		&ev.AuthorID, &ev.AuthorName, &ev.Text, &ev.Mentions, &ev.IsDM, &ev.Raw,
		&ev.Intent, &ev.HasMention, &ev.SalesSignal, &ev.IsFromTop,
		&ev.AnalyzedAt, &ev.ProcessingError, &ev.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ev, nil
}
