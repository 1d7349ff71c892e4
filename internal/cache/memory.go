package cache

import "sync"

// MemoryCache is an in-memory implementation of the Cache interface.
// It is safe for concurrent use, although a rewrite invocation only
// touches it from one goroutine.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]Entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]Entry),
	}
}

// Get returns the entry stored for key and whether it exists.
func (c *MemoryCache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	return entry, exists
}

// Put stores entry under key. A converted entry is never downgraded to the
// sentinel, so identical references keep identical output within a pass.
func (c *MemoryCache) Put(key string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.data[key]; ok && existing.convertible && !entry.convertible {
		return
	}
	c.data[key] = entry
}

// Size returns the number of entries in the cache.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}
