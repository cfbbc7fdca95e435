package cache

import (
	"context"
	"sync"
	"time"
)

type cacheEntry[T any] struct {
	value     *T
	expiresAt time.Time
}

func (e *cacheEntry[T]) isExpired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// MemoryCache is a process-local cache with a fixed TTL. Expired entries
// are dropped when read.
type MemoryCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry[T]
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an empty cache
func NewMemoryCache[T any](ttl time.Duration) *MemoryCache[T] {
	return &MemoryCache[T]{
		entries: make(map[string]*cacheEntry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns nil, nil on a miss
func (c *MemoryCache[T]) Get(_ context.Context, key string) (*T, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if entry.isExpired(c.now()) {
		c.mu.Lock()
		if current, ok := c.entries[key]; ok && current == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, nil
	}
	return entry.value, nil
}

// Set stores value. A nil value is ignored.
func (c *MemoryCache[T]) Set(_ context.Context, key string, value *T) error {
	if value == nil {
		return nil
	}
	c.mu.Lock()
	c.entries[key] = &cacheEntry[T]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// Delete removes key
func (c *MemoryCache[T]) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
