// Package redisstore backs the key-value contract with Redis, for demo
// deployments that want shared state without running PostgreSQL.
package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"trustharbor.org/internal/kv"
)

type Store struct {
	rdb *redis.Client
}

var _ kv.Store = (*Store)(nil)

// New connects to Redis at addr.
func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// NewWithClient wraps an existing client; tests use it with a miniredis-style
// stand-in or a local instance.
func NewWithClient(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	// No expiry: vault state persists until explicitly cleared.
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *Store) Close() error { return s.rdb.Close() }
