package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryKeyStore claims idempotency keys in process memory.
type MemoryKeyStore struct {
	store *gocache.Cache
}

// NewMemoryKeyStore creates a key store that purges expired keys every cleanup interval.
func NewMemoryKeyStore(cleanup time.Duration) *MemoryKeyStore {
	return &MemoryKeyStore{store: gocache.New(gocache.NoExpiration, cleanup)}
}

// Claim uses Add, which fails when the key is already present and unexpired.
func (s *MemoryKeyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := s.store.Add(key, struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *MemoryKeyStore) Release(ctx context.Context, key string) error {
	s.store.Delete(key)
	return nil
}
