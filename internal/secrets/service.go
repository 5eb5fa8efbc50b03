// Package secrets stores runtime credentials encrypted at rest, with an
// environment-variable fallback for values not yet in the database.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"pulsedesk.app/pulse/common/id"
	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/store"
)

// ErrNotFound is returned when a secret exists neither in the database nor in
// the environment.
var ErrNotFound = errors.New("secret not found")

type Service struct {
	store store.SecretStore
	box   *cipherBox
}

func NewService(secretStore store.SecretStore, hexKey string) (*Service, error) {
	box, err := newCipherBox(hexKey)
	if err != nil {
		return nil, err
	}
	return &Service{store: secretStore, box: box}, nil
}

// Get returns the decrypted value for key. Database entries win; when absent,
// the uppercased key (dots and dashes mapped to underscores) is looked up in
// the environment.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	secret, err := s.store.GetByKey(ctx, key)
	if err == nil {
		return s.box.Decrypt(secret.ValueEnc)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("loading secret %q: %w", key, err)
	}
	if val := os.Getenv(envName(key)); val != "" {
		return val, nil
	}
	return "", ErrNotFound
}

// Set encrypts and upserts the value under key.
func (s *Service) Set(ctx context.Context, key, value string) error {
	enc, err := s.box.Encrypt(value)
	if err != nil {
		return fmt.Errorf("encrypting secret %q: %w", key, err)
	}
	return s.store.Upsert(ctx, &model.Secret{
		ID:       id.New(),
		Key:      key,
		ValueEnc: enc,
	})
}

// Delete removes the stored secret. Deleting a secret that only exists as an
// environment variable returns store.ErrNotFound.
func (s *Service) Delete(ctx context.Context, key string) error {
	return s.store.DeleteByKey(ctx, key)
}

// List returns stored secrets without their values.
func (s *Service) List(ctx context.Context) ([]model.Secret, error) {
	return s.store.List(ctx)
}

func envName(key string) string {
	upper := strings.ToUpper(key)
	return strings.NewReplacer(".", "_", "-", "_").Replace(upper)
}
