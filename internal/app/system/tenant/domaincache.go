package tenant

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultCacheTTL is how long a custom-domain mapping is trusted.
const DefaultCacheTTL = 5 * time.Minute

// DefaultCacheMaxEntries bounds the in-memory domain cache.
const DefaultCacheMaxEntries = 1024

// DomainCache holds positive custom-domain lookups. Implementations treat
// their own failures as misses.
type DomainCache interface {
	Get(ctx context.Context, host string) (string, bool)
	Set(ctx context.Context, host, municipalityID string)
	Delete(ctx context.Context, host string)
}

/*─────────────────────────────────────────────────────────────────────────────*
| In-memory cache                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

type memEntry struct {
	id      string
	expires time.Time
}

// MemoryCache is a process-local TTL cache with a maximum entry count.
// Concurrent misses for the same host may each query the directory; the
// resulting writes are idempotent.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemoryCache creates a cache. Non-positive arguments select the defaults.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultCacheMaxEntries
	}
	return &MemoryCache{
		entries:    make(map[string]memEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached municipality ID for host if it has not expired.
func (c *MemoryCache) Get(_ context.Context, host string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[host]
	if !ok {
		return "", false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, host)
		return "", false
	}
	return e.id, true
}

// Set stores host → municipalityID. When the cache is full, expired entries
// are dropped first and then the entry closest to expiry.
func (c *MemoryCache) Set(_ context.Context, host, municipalityID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if _, exists := c.entries[host]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked(now)
	}
	c.entries[host] = memEntry{id: municipalityID, expires: now.Add(c.ttl)}
}

// Delete removes host.
func (c *MemoryCache) Delete(_ context.Context, host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, host)
}

// Len returns the number of entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) evictLocked(now time.Time) {
	var oldestHost string
	var oldest time.Time
	for h, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, h)
			continue
		}
		if oldestHost == "" || e.expires.Before(oldest) {
			oldestHost, oldest = h, e.expires
		}
	}
	if len(c.entries) >= c.maxEntries && oldestHost != "" {
		delete(c.entries, oldestHost)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Redis cache                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

const redisKeyPrefix = "civickey:domain:"

// RedisCache shares custom-domain mappings between server instances.
type RedisCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
	log *zap.Logger
}

// NewRedisCache creates a cache on rdb.
func NewRedisCache(rdb redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{rdb: rdb, ttl: ttl, log: logger}
}

// Get returns the cached municipality ID for host.
func (c *RedisCache) Get(ctx context.Context, host string) (string, bool) {
	id, err := c.rdb.Get(ctx, redisKeyPrefix+host).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("domain cache get failed", zap.String("host", host), zap.Error(err))
		}
		return "", false
	}
	return id, id != ""
}

// Set stores host → municipalityID with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, host, municipalityID string) {
	if err := c.rdb.Set(ctx, redisKeyPrefix+host, municipalityID, c.ttl).Err(); err != nil {
		c.log.Warn("domain cache set failed", zap.String("host", host), zap.Error(err))
	}
}

// Delete removes host.
func (c *RedisCache) Delete(ctx context.Context, host string) {
	if err := c.rdb.Del(ctx, redisKeyPrefix+host).Err(); err != nil {
		c.log.Warn("domain cache delete failed", zap.String("host", host), zap.Error(err))
	}
}
