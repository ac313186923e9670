// internal/geo/cache.go
//
// Lookup-result caches.
//
// Two implementations ship: an in-process LRU with TTL for single-node
// deployments, and a Redis-backed cache so a fleet of trackers behind
// one load balancer shares lookups (and the provider's rate budget).
// Only successful lookups are cached; transient failures retry on the
// next hit.
package geo

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yanizio/beacon/internal/cache"
)

// Cache memoizes normalized lookup results per IP.
type Cache interface {
	Get(ctx context.Context, ip string) (Info, bool)
	Set(ctx context.Context, ip string, info Info)
}

/*──────────────────────────── memory cache ────────────────────────────────*/

// MemoryCache wraps the shared LRU.  Adequate for one process; entries
// expire so stale region data ages out.
type MemoryCache struct {
	lru *cache.LRU
}

// NewMemoryCache returns a cache holding up to capacity IPs for ttl.
// A non-positive capacity falls back to 4096 entries.
func NewMemoryCache(capacity int, ttl time.Duration) *MemoryCache {
	if capacity <= 0 {
		capacity = 4096
	}
	return &MemoryCache{lru: cache.New(capacity, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, ip string) (Info, bool) {
	v, ok := c.lru.Get(ip)
	if !ok {
		return Info{}, false
	}
	return v.(Info), true
}

func (c *MemoryCache) Set(_ context.Context, ip string, info Info) {
	c.lru.Add(ip, info)
}

/*──────────────────────────── redis cache ─────────────────────────────────*/

// redisKeyPrefix namespaces tracker entries in a shared Redis.
const redisKeyPrefix = "beacon:geo:"

// RedisCache stores JSON-marshalled Info values with a TTL.  Cache
// errors are logged at DEBUG and treated as misses; Redis being down
// must not break tracking.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache wraps an existing client.  ttl <= 0 falls back to one
// hour.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, ip string) (Info, bool) {
	raw, err := c.rdb.Get(ctx, redisKeyPrefix+ip).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.S().Debugw("geo cache get failed", "ip", ip, "err", err)
		}
		return Info{}, false
	}

	var info Info
	if err := json.Unmarshal(raw, &info); err != nil {
		zap.S().Debugw("geo cache entry corrupt", "ip", ip, "err", err)
		return Info{}, false
	}
	return info, true
}

func (c *RedisCache) Set(ctx context.Context, ip string, info Info) {
	raw, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, redisKeyPrefix+ip, raw, c.ttl).Err(); err != nil {
		zap.S().Debugw("geo cache set failed", "ip", ip, "err", err)
	}
}
