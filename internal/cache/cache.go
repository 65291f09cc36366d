// Package cache implements a process-wide TTL cache for expensive derived
// views. Expiry is checked lazily on read; concurrent writers to the same key
// are not coordinated beyond last-write-wins, which is acceptable because the
// memoized computations are idempotent.
package cache

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

type entry[T any] struct {
	value    T
	storedAt time.Time
}

// Cache is a key -> value map with a fixed time-to-live.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	ttl     time.Duration
	clk     clock.Clock
}

// New returns a cache whose entries expire ttl after being set. The clock is
// injected so expiry is testable without real timers.
func New[T any](ttl time.Duration, clk clock.Clock) *Cache[T] {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Cache[T]{
		entries: make(map[string]entry[T]),
		ttl:     ttl,
		clk:     clk,
	}
}

// Get returns the cached value for key, dropping it first when expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero T
	if !ok {
		return zero, false
	}
	if c.clk.Now().Sub(e.storedAt) > c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; another writer may have refreshed it.
		if cur, still := c.entries[key]; still && c.clk.Now().Sub(cur.storedAt) > c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, resetting its TTL.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	c.entries[key] = entry[T]{value: value, storedAt: c.clk.Now()}
	c.mu.Unlock()
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
