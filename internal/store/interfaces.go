package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pulsedesk.app/pulse/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when an operator action targets a record
// whose current status does not permit it.
var ErrInvalidTransition = errors.New("invalid status transition")

// ThreadStore defines the contract for thread data access.
type ThreadStore interface {
	// Upsert creates the thread keyed by (source, external_id) or updates its
	// title when a non-nil title is provided.
	Upsert(ctx context.Context, thread *model.Thread) (*model.Thread, error)
	GetByID(ctx context.Context, id int64) (*model.Thread, error)
	ListRecent(ctx context.Context, limit int32) ([]model.Thread, error)
	ListIDs(ctx context.Context) ([]int64, error)
	UpdateSummary(ctx context.Context, id int64, contentMD string, at time.Time) error
}

// EventStore defines the contract for event data access.
type EventStore interface {
	// CreateOrGet inserts the event or, when (source, external_id) already
	// exists, returns the existing row. The bool reports whether a row was
	// created.
	CreateOrGet(ctx context.Context, event *model.Event) (*model.Event, bool, error)
	GetByID(ctx context.Context, id int64) (*model.Event, error)
	SetAnalysis(ctx context.Context, id int64, intent model.Intent, hasMention, salesSignal, isFromTop bool, at time.Time) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
	ListByThread(ctx context.Context, threadID int64, limit int32) ([]model.Event, error)
	ListByThreadBetween(ctx context.Context, threadID int64, from, to time.Time) ([]model.Event, error)
	ListRecentMentions(ctx context.Context, since time.Time) ([]model.Event, error)
}

// ConfigTopStore defines the contract for VIP identity data access.
type ConfigTopStore interface {
	Upsert(ctx context.Context, rec *model.ConfigTop) (*model.ConfigTop, error)
	// MatchesAny reports whether any of the identities is listed for source.
	MatchesAny(ctx context.Context, source model.Source, identities []string) (bool, error)
	List(ctx context.Context) ([]model.ConfigTop, error)
	Delete(ctx context.Context, id int64) error
}

// OutboxStore defines the contract for outbox data access.
type OutboxStore interface {
	Create(ctx context.Context, rec *model.Outbox) (*model.Outbox, error)
	GetByID(ctx context.Context, id int64) (*model.Outbox, error)
	// ListDispatchable returns PENDING and CONFIRMED records oldest-first.
	ListDispatchable(ctx context.Context, limit int32) ([]model.Outbox, error)
	List(ctx context.Context, status *model.OutboxStatus, limit int32) ([]model.Outbox, error)
	MarkSent(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
	Confirm(ctx context.Context, id int64, at time.Time) (*model.Outbox, error)
	Retry(ctx context.Context, id int64) (*model.Outbox, error)
	Cancel(ctx context.Context, id int64) (*model.Outbox, error)
	UpdatePayload(ctx context.Context, id int64, payload json.RawMessage) error
}

// LastSeenStore defines the contract for the per-thread progress cursor.
type LastSeenStore interface {
	Upsert(ctx context.Context, cursor *model.LastSeen) error
	GetByThread(ctx context.Context, threadID int64) (*model.LastSeen, error)
}

// DigestStore defines the contract for daily digest data access.
type DigestStore interface {
	Upsert(ctx context.Context, digest *model.DailyDigest) (*model.DailyDigest, error)
	GetLatestByThread(ctx context.Context, threadID int64) (*model.DailyDigest, error)
}

// SecretStore defines the contract for encrypted secret data access.
type SecretStore interface {
	Upsert(ctx context.Context, secret *model.Secret) error
	GetByKey(ctx context.Context, key string) (*model.Secret, error)
	DeleteByKey(ctx context.Context, key string) error
	List(ctx context.Context) ([]model.Secret, error)
}
