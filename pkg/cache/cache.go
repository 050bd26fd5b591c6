// Package cache holds the shared Redis connection and the counters kept in
// it. Without Redis the process falls back to in-memory counters.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mogusu300/b2zi-merchant/config"
	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

// Connect initialises the Redis client and verifies the connection with a ping.
// Returns an error so the caller can react (log warning, fall back, or abort).
func Connect(ctx context.Context) error {
	addr := config.RedisAddr()
	if addr == "" {
		return fmt.Errorf("cache: REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.RedisPassword(),
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("cache: redis ping: %w", err)
	}

	RDB = client
	return nil
}

// Close releases the Redis client if one is open.
func Close() error {
	if RDB == nil {
		return nil
	}
	err := RDB.Close()
	RDB = nil
	return err
}

// NewCounter returns a Redis-backed counter when connected, otherwise an
// in-memory one.
func NewCounter() Counter {
	if RDB != nil {
		return NewRedisCounter(RDB, "b2zi:")
	}
	return NewMemoryCounter()
}
