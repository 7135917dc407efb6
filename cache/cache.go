// Package cache provides a small in-memory memo with a sliding TTL:
// every successful read pushes the entry's expiry forward, so keys under
// continuous traffic never expire. The engine shares one instance per
// process for existence and permission lookups.
package cache

import (
	"sync"
	"time"
)

const (
	// DefaultCapacity bounds the number of live entries
	DefaultCapacity = 1000
	// DefaultTTL is how long an untouched entry survives
	DefaultTTL = 24 * time.Hour
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a capacity- and TTL-bounded key/value memo, safe for
// concurrent use. Absent backing-store results must not be cached:
// callers only Set values that exist, so a user who joins later is
// found on the next lookup.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[K]*entry[V]
	now      func() time.Time
}

// New creates a cache with the given capacity and TTL.
// Non-positive values fall back to the defaults.
func New[K comparable, V any](capacity int, ttl time.Duration) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[K]*entry[V]),
		now:      time.Now,
	}
}

// Get returns the cached value for key. A hit slides the entry's expiry
// to now+TTL before returning.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	now := c.now()
	if !e.expiresAt.After(now) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}

	e.expiresAt = now.Add(c.ttl)
	return e.value, true
}

// Set stores a value for key, evicting the oldest-expiring entry when
// the cache is full.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = now.Add(c.ttl)
		return
	}

	if len(c.entries) >= c.capacity {
		c.evict(now)
	}

	c.entries[key] = &entry[V]{
		value:     value,
		expiresAt: now.Add(c.ttl),
	}
}

// Len returns the number of live entries, dropping any that expired
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if !e.expiresAt.After(now) {
			delete(c.entries, key)
		}
	}
	return len(c.entries)
}

// evict removes expired entries, then the oldest-expiring one if the
// cache is still full. Caller holds the lock.
func (c *Cache[K, V]) evict(now time.Time) {
	for key, e := range c.entries {
		if !e.expiresAt.After(now) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.capacity {
		return
	}

	var (
		oldestKey K
		oldest    time.Time
		found     bool
	)
	for key, e := range c.entries {
		if !found || e.expiresAt.Before(oldest) {
			oldestKey = key
			oldest = e.expiresAt
			found = true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}
