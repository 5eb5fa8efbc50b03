package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so the same store code
// runs inside and outside transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Stores provides typed accessors over a shared DBTX.
type Stores struct {
	db DBTX
}

func NewStores(db DBTX) *Stores {
	return &Stores{db: db}
}

func (s *Stores) Threads() ThreadStore {
	return &threadStore{db: s.db}
}

func (s *Stores) Events() EventStore {
	return &eventStore{db: s.db}
}

func (s *Stores) ConfigTop() ConfigTopStore {
	return &configTopStore{db: s.db}
}

func (s *Stores) Outbox() OutboxStore {
	return &outboxStore{db: s.db}
}

func (s *Stores) LastSeen() LastSeenStore {
	return &lastSeenStore{db: s.db}
}

func (s *Stores) Digests() DigestStore {
	return &digestStore{db: s.db}
}

func (s *Stores) Secrets() SecretStore {
	return &secretStore{db: s.db}
}
