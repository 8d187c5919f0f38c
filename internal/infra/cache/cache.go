// Package cache provides a generic in-memory cache with per-entry TTLs.
// Region lookups are static government data, so a process-local cache is
// enough.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e entry[T]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemory is a thread-safe cache. Every entry carries its own deadline:
// Set uses the default TTL, SetWithTTL overrides it per entry. Expired
// entries are dropped on access and swept by a background janitor.
type InMemory[T any] struct {
	mu         sync.Mutex
	items      map[string]entry[T]
	defaultTTL time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a cache whose entries live for ttl by default and starts
// its janitor. Call Stop to release the janitor goroutine.
func New[T any](ttl time.Duration) *InMemory[T] {
	c := &InMemory[T]{
		items:      make(map[string]entry[T]),
		defaultTTL: ttl,
		done:       make(chan struct{}),
	}
	go c.janitor(ttl)
	return c
}

// Get returns the cached value for key. An expired entry counts as a miss
// and is removed on the spot rather than waiting for the janitor.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		var zero T
		return zero, false
	}
	if e.expired(time.Now()) {
		delete(c.items, key)
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *InMemory[T]) Set(key string, value T) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key with its own lifetime.
func (c *InMemory[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[T]{value: value, expiresAt: time.Now().Add(ttl)}
}

// Delete removes key from the cache.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Stop shuts the janitor down. Safe to call more than once; the cache
// itself stays usable, entries just stop being swept in the background.
func (c *InMemory[T]) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *InMemory[T]) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for k, e := range c.items {
				if e.expired(now) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		}
	}
}
