// Package cache memoizes query results for a configurable TTL, grounded
// on the teacher's ristretto-backed client cache (spec §4.10, P8).
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache stores arbitrary query results keyed by an opaque string (the
// caller builds the key from the query name and its bound arguments).
// A Cache constructed with ttl == 0 never stores anything, so callers can
// unconditionally Get/Set without special-casing "caching disabled".
type Cache struct {
	ristretto *ristretto.Cache
	ttl       time.Duration
}

// New returns a cache keeping entries for ttl. ttl <= 0 disables caching
// entirely (spec §4.10's "cache_ttl_secs: 0 disables the cache").
func New(ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		return &Cache{ttl: 0}, nil
	}
	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1 << 26, // 64 MiB of cached result payloads
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{ristretto: rc, ttl: ttl}, nil
}

// Get returns the cached value for key, if present and not disabled.
func (c *Cache) Get(key string) (interface{}, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	return c.ristretto.Get(key)
}

// Set stores value under key with this cache's TTL and an assumed cost of
// 1 — query results here are small, structured aggregates, not raw row
// dumps, so a flat cost keeps eviction proportional to entry count.
func (c *Cache) Set(key string, value interface{}) {
	if c.ttl <= 0 {
		return
	}
	c.ristretto.SetWithTTL(key, value, 1, c.ttl)
}

// Invalidate drops every cached entry, called after a flush writes new
// partitions so stale aggregates are not served past their data's
// refresh.
func (c *Cache) Invalidate() {
	if c.ttl <= 0 {
		return
	}
	c.ristretto.Clear()
}
