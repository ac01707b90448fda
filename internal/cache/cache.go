package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"commerce-backend/internal/util"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Well-known query keys for the cached list endpoints
const (
	KeyWeeklyOrders = "query:orders:weekly"
	KeyAllUsers     = "query:users:all"
)

// Cache is a redis-backed read-through cache for query results,
// parameterized by key and TTL. It is a performance layer only:
// any redis failure falls back to computing the result directly.
type Cache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewCache creates a new query cache
func NewCache(addr, password string, db int) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Cache{
		rdb:    rdb,
		logger: util.GetLogger(),
	}, nil
}

// Close closes the redis connection
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// GetOrCompute serves dest from the cache when the key is fresh,
// otherwise runs compute, stores the result under key for ttl, and
// serves that. dest must be a pointer to the compute result's type.
func (c *Cache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, dest interface{}, compute func(ctx context.Context) (interface{}, error)) error {
	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		util.CacheHitsTotal.WithLabelValues(key).Inc()
		return json.Unmarshal([]byte(cached), dest)
	}

	if err == redis.Nil {
		util.CacheMissesTotal.WithLabelValues(key).Inc()
	} else {
		c.logger.Warn("Cache read failed, computing directly",
			zap.String("key", key),
			zap.Error(err))
	}

	fresh, err := compute(ctx)
	if err != nil {
		return err
	}

	buf, err := json.Marshal(fresh)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	if err := c.rdb.Set(ctx, key, buf, ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed",
			zap.String("key", key),
			zap.Error(err))
	}

	return json.Unmarshal(buf, dest)
}

// Invalidate drops the given query keys
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
