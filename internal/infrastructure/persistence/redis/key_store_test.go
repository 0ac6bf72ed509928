package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

func TestKeyStore_ClaimOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewKeyStore(NewRedisConnectionFromClient(client, nil, logger.NewNoopLogger()))
	ctx := context.Background()

	ok, err := store.Claim(ctx, "esg:idem:t1:/tasks:abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Claim(ctx, "esg:idem:t1:/tasks:abc", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = store.Claim(ctx, "esg:idem:t1:/tasks:abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired keys can be claimed again")

	require.NoError(t, store.Release(ctx, "esg:idem:t1:/tasks:abc"))
	assert.False(t, mr.Exists("esg:idem:t1:/tasks:abc"))
}

func TestKeyStore_BackendDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewKeyStore(NewRedisConnectionFromClient(client, nil, logger.NewNoopLogger()))
	mr.Close()

	_, err := store.Claim(context.Background(), "k", time.Minute)
	assert.ErrorIs(t, err, errors.ErrCacheOperation)
}
