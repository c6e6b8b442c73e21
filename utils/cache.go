package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Default cache ttl set to 3600 seconds
	defaultCacheTTL = time.Hour
	redisTimeout    = 300 * time.Millisecond
)

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// Cache is a two-level JSON cache: an in-process map in front of an
// optional Redis client. A nil *Cache is a valid cache that never hits.
type Cache struct {
	prefix string
	ttl    time.Duration
	rdb    *redis.Client

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache returns a cache whose Redis keys start with prefix. rdb may be nil.
func NewCache(rdb *redis.Client, prefix string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{prefix: prefix, ttl: ttl, rdb: rdb, entries: make(map[string]cacheEntry)}
}

// HashKey derives a stable cache key from any JSON-encodable value.
func HashKey(v interface{}) string {
	b, _ := json.Marshal(v)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// GetJSON decodes a cached value into v and reports whether it was found.
func (c *Cache) GetJSON(ctx context.Context, key string, v interface{}) bool {
	if c == nil {
		return false
	}
	b, ok := c.localGet(key)
	if !ok {
		b, ok = c.redisGet(ctx, key)
		if !ok {
			return false
		}
		c.localSet(key, b)
	}
	return json.Unmarshal(b, v) == nil
}

// SetJSON stores v under key in both levels. Redis errors are logged only.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.localSet(key, b)
	if c.rdb == nil {
		return
	}
	ctx2, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	if err := c.rdb.Set(ctx2, c.prefix+key, b, c.ttl).Err(); err != nil {
		Sugar.Warnf("cache set failed key=%s err=%v", key, err)
	}
}

func (c *Cache) localGet(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *Cache) localSet(key string, b []byte) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: b, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache) redisGet(ctx context.Context, key string) ([]byte, bool) {
	if c.rdb == nil {
		return nil, false
	}
	ctx2, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	b, err := c.rdb.Get(ctx2, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			Sugar.Debugf("cache get miss key=%s err=%v", key, err)
		}
		return nil, false
	}
	return b, true
}
