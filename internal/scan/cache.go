package scan

import (
	"sync"

	"github.com/marthaea/link-guardian-safecheck/internal/verdict"
)

// Cache memoizes verdicts per normalized input for the lifetime of the
// service. There is no TTL and no invalidation beyond Clear: a verdict
// for a given string is returned unchanged for the whole session.
// Concurrent scans of the same input are not collapsed; last writer wins,
// which is fine because computing a verdict is cheap and side-effect-free.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]verdict.Verdict
}

// NewCache creates an empty verdict cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]verdict.Verdict)}
}

// Get returns the cached verdict for a normalized input key.
func (c *Cache) Get(key string) (verdict.Verdict, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores a verdict under a normalized input key.
func (c *Cache) Put(key string, v verdict.Verdict) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

// Clear drops every cached verdict.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]verdict.Verdict)
}

// Len returns the number of cached verdicts.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
