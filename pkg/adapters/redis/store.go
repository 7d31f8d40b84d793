// Package redis provides a SnapshotStore backed by Redis, for deployments
// where the session should survive the process serving it.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/alpha-nc/intake/pkg/session"
)

// Store implements ports.SnapshotStore using Redis. The key embeds the form
// tag and a format version; the Redis-side TTL mirrors the snapshot
// retention window so abandoned sessions age out of the server too.
type Store struct {
	client *backend.Client
	tag    string
	ttl    time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithTTL overrides the Redis key expiration (default session.DefaultTTL).
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New creates a Redis store connecting to the given address.
func New(address, password string, db int, tag string, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, tag, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, tag string, opts ...Option) *Store {
	store := &Store{
		client: client,
		tag:    tag,
		ttl:    session.DefaultTTL,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key() string {
	return s.tag + ":v1:snapshot"
}

// Save persists the snapshot with the configured TTL.
func (s *Store) Save(ctx context.Context, snap *session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis error saving snapshot: %w", err)
	}
	return nil
}

// Load retrieves the snapshot. A missing key or undecodable payload is
// reported as session.ErrSnapshotNotFound.
func (s *Store) Load(ctx context.Context) (*session.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, session.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("redis error loading snapshot: %w", err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, session.ErrSnapshotNotFound
	}
	return &snap, nil
}

// Clear removes the snapshot key.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("redis error clearing snapshot: %w", err)
	}
	return nil
}
