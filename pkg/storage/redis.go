package storage

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/invindex/pkg/errors"
	pkgredis "github.com/Adithya-Monish-Kumar-K/invindex/pkg/redis"
)

// RedisStore keeps each index under KeyPrefix+name.
type RedisStore struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
}

func NewRedisStore(client *pkgredis.Client, cfg config.RedisConfig) *RedisStore {
	return &RedisStore{client: client, cfg: cfg}
}

func (s *RedisStore) key(name string) string {
	return s.cfg.KeyPrefix + name
}

func (s *RedisStore) Put(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return apperrors.New(apperrors.ErrInvalidDestination, "empty index name")
	}
	if err := s.client.Set(ctx, s.key(name), data, s.cfg.TTL); err != nil {
		return apperrors.Newf(apperrors.ErrInvalidDestination, "storing %s in redis: %v", s.key(name), err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.GetBytes(ctx, s.key(name))
	if err != nil {
		if pkgredis.IsNilError(err) {
			return nil, apperrors.Newf(apperrors.ErrNotFound, "index %q in redis", name)
		}
		return nil, fmt.Errorf("reading %s from redis: %w", s.key(name), err)
	}
	return data, nil
}

// Delete removes the index stored under name.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	return s.client.Del(ctx, s.key(name))
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
