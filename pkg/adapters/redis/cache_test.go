package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tela/pkg/adapters/redis"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/aretw0/tela/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCache_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunCacheContract(t, redis.NewFromClient(client))
}

func TestRedisLocker_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunLockerContract(t, redis.NewLocker(client, "test:"))
}

func TestRedisCache_Prefix(t *testing.T) {
	mr, client := setup(t)
	cache := redis.NewFromClient(client, redis.WithPrefix("custom:"))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a U b", []byte("HOA: v1")))
	assert.True(t, mr.Exists("custom:a U b"))

	got, err := mr.Get("custom:a U b")
	require.NoError(t, err)
	assert.Equal(t, "HOA: v1", got)
}

func TestRedisCache_TTL_Expiration(t *testing.T) {
	mr, client := setup(t)
	cache := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v")))
	keys, err := cache.Keys(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, "k")

	mr.FastForward(2 * time.Second)

	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestRedisLocker_KeyLifecycle(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:lock:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "resource1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:lock:resource1"), "lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:lock:resource1"), "lock key should be removed after unlock")
}
