package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// unreachableCache builds a Cache whose redis client cannot connect, so
// every Get and Set fails and GetOrCompute has to fall back to compute
func unreachableCache() *Cache {
	return &Cache{
		rdb: redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		}),
		logger: zap.NewNop(),
	}
}

func TestGetOrCompute_FallsBackWhenRedisUnavailable(t *testing.T) {
	c := unreachableCache()
	defer c.Close()

	computed := 0
	var dest []int
	err := c.GetOrCompute(context.Background(), "query:test", time.Minute, &dest,
		func(ctx context.Context) (interface{}, error) {
			computed++
			return []int{1, 2, 3}, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 1, computed)
	assert.Equal(t, []int{1, 2, 3}, dest)
}

func TestGetOrCompute_ComputeErrorPropagates(t *testing.T) {
	c := unreachableCache()
	defer c.Close()

	boom := errors.New("store down")
	var dest []int
	err := c.GetOrCompute(context.Background(), "query:test", time.Minute, &dest,
		func(ctx context.Context) (interface{}, error) {
			return nil, boom
		})

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, dest)
}

func TestInvalidate_NoKeysIsNoop(t *testing.T) {
	c := unreachableCache()
	defer c.Close()

	assert.NoError(t, c.Invalidate(context.Background()))
}

// TestGetOrCompute_ServesCachedValue exercises the hit path against a
// live redis; set REDIS_ADDR to run it.
func TestGetOrCompute_ServesCachedValue(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}

	c, err := NewCache(addr, "", 0)
	require.NoError(t, err)
	defer c.Close()

	key := "query:test:hit"
	require.NoError(t, c.Invalidate(context.Background(), key))

	computed := 0
	compute := func(ctx context.Context) (interface{}, error) {
		computed++
		return []string{"a", "b"}, nil
	}

	var first []string
	require.NoError(t, c.GetOrCompute(context.Background(), key, time.Minute, &first, compute))

	var second []string
	require.NoError(t, c.GetOrCompute(context.Background(), key, time.Minute, &second, compute))

	assert.Equal(t, 1, computed, "second read is served from the cache")
	assert.Equal(t, first, second)

	require.NoError(t, c.Invalidate(context.Background(), key))

	var third []string
	require.NoError(t, c.GetOrCompute(context.Background(), key, time.Minute, &third, compute))
	assert.Equal(t, 2, computed, "invalidation forces a recompute")
}
