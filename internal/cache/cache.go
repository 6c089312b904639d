// Package cache provides an optional Redis-backed cache for computed
// group progress. The cache is an optimization only: every accessor
// degrades to a miss or a no-op when Redis is not configured or
// unreachable, so correctness never depends on it.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL = time.Hour
	opTimeout  = 2 * time.Second
)

// Cache wraps a Redis client. A nil *Cache is valid and behaves as a
// permanent miss.
type Cache struct {
	rdb *redis.Client
}

// New connects to Redis at addr. An empty addr disables caching and
// returns nil. Connection problems are logged, not fatal.
func New(addr, password string, db int) *Cache {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis unreachable, caching degraded", "addr", addr, "error", err)
	}
	return &Cache{rdb: rdb}
}

// GetJSON loads the value stored under key into v. Returns false on miss
// or any error.
func (c *Cache) GetJSON(ctx context.Context, key string, v interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		slog.Debug("cache entry unmarshal failed", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON marshals v and stores it under key with the given TTL
// (defaultTTL when ttl <= 0). Failures are logged and swallowed.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		slog.Warn("cache set failed", "key", key, "error", err)
	}
}

// InvalidatePrefix deletes keys matching prefix* using SCAN with a
// bounded number of rounds.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	if c == nil || c.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var cursor uint64
	for i := 0; i < 10; i++ {
		keys, next, err := c.rdb.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			return
		}
		cursor = next
		if len(keys) > 0 {
			pipe := c.rdb.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			return
		}
	}
}
