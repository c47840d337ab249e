package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMemorySize = 1000

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is a bounded in-process Cache. Least recently used entries
// are evicted once Size is reached.
type MemoryCache struct {
	entries *lru.Cache[string, memoryEntry]
}

// NewMemoryCache creates an LRU cache holding at most size entries.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = defaultMemorySize
	}
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryCache{entries: entries}, nil
}

// Get returns the entry for key unless it is missing or expired.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if !time.Now().Before(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}
	return entry.data, true
}

// Set stores data under key until ttl elapses.
func (c *MemoryCache) Set(key string, data []byte, ttl time.Duration) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	c.entries.Add(key, memoryEntry{data: buf, expiresAt: time.Now().Add(ttl)})
	return nil
}

// Prune removes expired entries without touching recency.
func (c *MemoryCache) Prune() (int, error) {
	now := time.Now()
	removed := 0
	for _, key := range c.entries.Keys() {
		entry, ok := c.entries.Peek(key)
		if ok && !now.Before(entry.expiresAt) {
			c.entries.Remove(key)
			removed++
		}
	}
	return removed, nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear() error {
	c.entries.Purge()
	return nil
}

// Close is a no-op.
func (c *MemoryCache) Close() error {
	return nil
}
