package sender

import (
	"context"
	"testing"
	"time"

	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/secrets"
	"pulsedesk.app/pulse/internal/store"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// emptySecretStore has no stored secrets, so every lookup falls back to the
// environment.
type emptySecretStore struct{}

func (emptySecretStore) Upsert(ctx context.Context, secret *model.Secret) error {
	return nil
}

func (emptySecretStore) GetByKey(ctx context.Context, key string) (*model.Secret, error) {
	return nil, store.ErrNotFound
}

func (emptySecretStore) DeleteByKey(ctx context.Context, key string) error {
	return store.ErrNotFound
}

func (emptySecretStore) List(ctx context.Context) ([]model.Secret, error) {
	return nil, nil
}

func newTestSecrets(t *testing.T) *secrets.Service {
	t.Helper()
	svc, err := secrets.NewService(emptySecretStore{}, testEncryptionKey)
	if err != nil {
		t.Fatalf("building secrets service: %v", err)
	}
	return svc
}

func fastRetryOptions() (maxRetries int, baseDelay, maxDelay time.Duration) {
	return 3, time.Millisecond, 5 * time.Millisecond
}
