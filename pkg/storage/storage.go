// Package storage persists serialized indexes as whole blobs. Backends are
// the local filesystem, Redis and PostgreSQL; all report a missing blob as
// ErrNotFound and an unwritable target as ErrInvalidDestination.
package storage

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/config"
	pkgpostgres "github.com/Adithya-Monish-Kumar-K/invindex/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/invindex/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/resilience"
)

// Store reads and writes complete index blobs by name.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Close() error
}

// New opens the backend selected in cfg.Storage. Connecting to a remote
// backend is retried up to cfg.Storage.ConnectAttempts times.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	policy := resilience.Policy{MaxAttempts: cfg.Storage.ConnectAttempts}
	switch cfg.Storage.Backend {
	case config.BackendFile, "":
		return NewFileStore(), nil
	case config.BackendRedis:
		var client *pkgredis.Client
		err := resilience.Retry(ctx, "redis connect", policy, func(ctx context.Context) error {
			var err error
			client, err = pkgredis.NewClient(ctx, cfg.Redis)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("opening redis store: %w", err)
		}
		return NewRedisStore(client, cfg.Redis), nil
	case config.BackendPostgres:
		var client *pkgpostgres.Client
		err := resilience.Retry(ctx, "postgres connect", policy, func(ctx context.Context) error {
			var err error
			client, err = pkgpostgres.New(ctx, cfg.Postgres)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		store, err := NewPostgresStore(ctx, client, cfg.Postgres.Table)
		if err != nil {
			client.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
