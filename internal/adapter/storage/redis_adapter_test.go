package storage

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisAdapter_SaveLoadDelete(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, 0, 0, "test-owner")
	key := "shopping_cart:test-session"
	client.Del(ctx, key)

	_, ok, err := adapter.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, adapter.Save(ctx, key, []byte(`[{"productId":"p1","quantity":2}]`)))

	data, ok, err := adapter.Load(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"productId":"p1","quantity":2}]`, string(data))

	require.NoError(t, adapter.Delete(ctx, key))
	exists, _ := client.Exists(ctx, key).Result()
	assert.Equal(t, int64(0), exists)
}

func TestRedisAdapter_SaveWithTTL(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Hour, 0, "test-owner")
	key := "shopping_cart:ttl-session"
	client.Del(ctx, key)

	require.NoError(t, adapter.Save(ctx, key, []byte(`[]`)))

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	client.Del(ctx, key)
}

func TestRedisAdapter_AcquireRelease(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, 0, time.Minute, "test-owner")
	client.Del(ctx, guardKeyPrefix+"checkout:s1")

	ok, err := adapter.Acquire(ctx, "checkout:s1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = adapter.Acquire(ctx, "checkout:s1")
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	require.NoError(t, adapter.Release(ctx, "checkout:s1"))

	ok, err = adapter.Acquire(ctx, "checkout:s1")
	require.NoError(t, err)
	assert.True(t, ok)

	client.Del(ctx, guardKeyPrefix+"checkout:s1")
}

func TestRedisAdapter_ReleaseKeepsForeignGuard(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	mine := NewRedisAdapter(client, 0, time.Minute, "instance-a")
	theirs := NewRedisAdapter(client, 0, time.Minute, "instance-b")
	client.Del(ctx, guardKeyPrefix+"checkout:s2")

	ok, err := theirs.Acquire(ctx, "checkout:s2")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, mine.Release(ctx, "checkout:s2"))

	owner, err := client.Get(ctx, guardKeyPrefix+"checkout:s2").Result()
	require.NoError(t, err)
	assert.Equal(t, "instance-b", owner)

	client.Del(ctx, guardKeyPrefix+"checkout:s2")
}

func TestRedisAdapter_AcquireConcurrent(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, 0, time.Minute, "test-owner")
	client.Del(ctx, guardKeyPrefix+"concurrent-guard")

	var successCount atomic.Int32
	var wg sync.WaitGroup
	concurrency := 100

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := adapter.Acquire(ctx, "concurrent-guard")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), successCount.Load())
	client.Del(ctx, guardKeyPrefix+"concurrent-guard")
}
