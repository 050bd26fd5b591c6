package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/mogusu300/b2zi-merchant/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// Counter is a set of named monotonically increasing integers.
type Counter interface {
	Incr(ctx context.Context, key string, n int64) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
}

// ─── Redis ───────────────────────────────────────────────────────────────────

// RedisCounter keeps counters as Redis integers under prefix.
type RedisCounter struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisCounter(rdb *redis.Client, prefix string) *RedisCounter {
	return &RedisCounter{rdb: rdb, prefix: prefix}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, n int64) (int64, error) {
	v, err := c.rdb.IncrBy(ctx, c.prefix+key, n).Result()
	observe("redis", "incr", err)
	return v, err
}

// Get returns 0 for a counter that was never incremented.
func (c *RedisCounter) Get(ctx context.Context, key string) (int64, error) {
	v, err := c.rdb.Get(ctx, c.prefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		observe("redis", "get", nil)
		return 0, nil
	}
	observe("redis", "get", err)
	return v, err
}

// ─── Memory ──────────────────────────────────────────────────────────────────

// MemoryCounter is a process-local Counter for development and tests.
type MemoryCounter struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{values: map[string]int64{}}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, n int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] += n
	observe("memory", "incr", nil)
	return c.values[key], nil
}

func (c *MemoryCounter) Get(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	observe("memory", "get", nil)
	return c.values[key], nil
}

func observe(driver, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.CounterOps.WithLabelValues(driver, op, result).Inc()
}
