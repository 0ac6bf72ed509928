package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/esg/pkg/errors"
)

// KeyStore claims idempotency keys in Redis with SETNX, so replays are
// detected across every API replica.
type KeyStore struct {
	conn *RedisConnection
}

// NewKeyStore creates a Redis-backed key store.
func NewKeyStore(conn *RedisConnection) *KeyStore {
	return &KeyStore{conn: conn}
}

func (s *KeyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.conn.Client.SetNX(ctx, key, time.Now().UTC().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %w", errors.ErrCacheOperation, err)
	}
	return ok, nil
}

func (s *KeyStore) Release(ctx context.Context, key string) error {
	if err := s.conn.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrCacheOperation, err)
	}
	return nil
}
