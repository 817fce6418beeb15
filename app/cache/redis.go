// Package cache provides an optional Redis-backed cache for the aggregate
// query responses served by the API. The store itself stays authoritative;
// cached entries only short-circuit repeated GROUP BY scans between
// ingestion runs.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds staleness of cached aggregates. Ingestion invalidates
// explicitly, so the TTL only matters when invalidation is missed.
const DefaultTTL = 5 * time.Minute

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache connects to Redis at addr. A failed connection is an error, not a
// silent no-op: callers decide whether to run uncached.
func NewCache(addr string, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	slog.Info("Connected to Redis", "addr", addr, "ttl", ttl)
	return &Cache{client: client, ttl: ttl}, nil
}

// StatsKey is the cache key for the global aggregate response.
func StatsKey() string {
	return "atlas:stats"
}

// RegionKey is the cache key for one region's detail response.
func RegionKey(region string, limit int) string {
	return fmt.Sprintf("atlas:region:%s:%d", region, limit)
}

// Get unmarshals the cached value for key into dest. A nil Cache and a cache
// miss both report false without error.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// Stale encoding from an older build; drop it and treat as a miss.
		c.client.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

// Set stores value under key with the configured TTL. A nil Cache is a no-op.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Invalidate removes all cached aggregate responses. Called after any write
// that changes the stored opportunity set.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, "atlas:*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}
	return nil
}

// Health reports connection status for the health endpoint.
func (c *Cache) Health(ctx context.Context) map[string]interface{} {
	health := map[string]interface{}{
		"status": "healthy",
		"type":   "redis",
	}

	if err := c.client.Ping(ctx).Err(); err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
		return health
	}

	if size, err := c.client.DBSize(ctx).Result(); err == nil {
		health["key_count"] = size
	}
	return health
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
