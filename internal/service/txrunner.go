package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"pulsedesk.app/pulse/core/db"
	"pulsedesk.app/pulse/internal/store"
)

// StoreProvider exposes only the stores needed by a transactional operation.
type StoreProvider interface {
	Threads() store.ThreadStore
	Events() store.EventStore
	ConfigTop() store.ConfigTopStore
	Outbox() store.OutboxStore
	LastSeen() store.LastSeenStore
	Digests() store.DigestStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the core DB.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		stores := store.NewStores(tx)
		return fn(stores)
	})
}
