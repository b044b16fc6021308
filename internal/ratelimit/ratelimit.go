// Package ratelimit implements the per-site token-bucket admission check
// (spec §3.4, §4.4).
package ratelimit

import (
	"sync"
	"time"
)

// Bucket holds one site's token-bucket state.
type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// Limiter is a concurrent map of site_id to token bucket. A rate of 0
// disables limiting entirely: every request is admitted without touching
// the map.
type Limiter struct {
	rate     float64
	capacity float64

	mu      sync.Mutex
	buckets map[string]*bucket
}

// New returns a Limiter refilling at rate tokens/sec up to capacity tokens.
// rate == 0 means unlimited.
func New(rate, capacity float64) *Limiter {
	return &Limiter{rate: rate, capacity: capacity, buckets: make(map[string]*bucket)}
}

// Allow reports whether a request for siteID is admitted now, refilling
// and deducting a token as a side effect (spec §4.4, property P7).
func (l *Limiter) Allow(siteID string) bool {
	if l.rate == 0 {
		return true
	}
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[siteID]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[siteID] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// RetryAfter estimates the wait, in seconds, until siteID's bucket next
// admits a request. Nothing in this module calls it: 429 responses carry
// no Retry-After header.
func (l *Limiter) RetryAfter(siteID string) float64 {
	if l.rate == 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[siteID]
	if !ok || b.tokens >= 1 {
		return 0
	}
	need := 1 - b.tokens
	return need / l.rate
}

// Cleanup removes buckets untouched for longer than idle, bounding map
// growth across the long tail of one-off site_ids.
func (l *Limiter) Cleanup(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	for id, b := range l.buckets {
		if now.Sub(b.lastRefill) > idle {
			delete(l.buckets, id)
		}
	}
}
