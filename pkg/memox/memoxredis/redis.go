// Package memoxredis implements the memox cache collaborator on Redis.
package memoxredis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Abraxas-365/flowx/pkg/memox"
)

// Cache implements memox.Cache backed by Redis.
type Cache struct {
	rdb *redis.Client
}

// NewCache creates a new Redis-backed cache.
func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

var _ memox.Cache = (*Cache)(nil)

// cacheKey namespaces memox entries in the shared keyspace.
func cacheKey(key string) string { return "memox:" + key }

// Get returns the raw value for key. A missing key is (value="", ok=false, err=nil).
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.rdb.Get(ctx, cacheKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, redisErrors.NewWithCause(ErrGet, err).WithDetail("key", key)
	}
	return value, true, nil
}

// Set stores value under key with the given TTL.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, cacheKey(key), value, ttl).Err(); err != nil {
		return redisErrors.NewWithCause(ErrSet, err).
			WithDetail("key", key).
			WithDetail("ttl", ttl.String())
	}
	return nil
}

// Delete removes a key. Best effort; used by operational tooling, not by the
// memoizer itself.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, cacheKey(key)).Err(); err != nil {
		return redisErrors.NewWithCause(ErrDelete, err).WithDetail("key", key)
	}
	return nil
}
