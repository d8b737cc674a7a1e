package fideauth

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a SessionStore backed by redis, for deployments where the
// durable slot lives in shared storage rather than on local disk. Values are
// written without TTL; envelope max age governs trust, not storage expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to addr and returns a store.
func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read session storage entry")
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write session storage entry")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete session storage entry")
	}
	return nil
}
