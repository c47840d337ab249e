// Package cache provides an optional response cache for upstream provider calls.
package cache

import (
	"fmt"
	"time"
)

// Cache defines the interface for caching raw upstream responses.
type Cache interface {
	// Get retrieves data from the cache by key.
	// Returns the data and true if found and not expired, otherwise nil and false.
	Get(key string) ([]byte, bool)

	// Set stores data in the cache with the given key and TTL.
	Set(key string, data []byte, ttl time.Duration) error

	// Prune deletes expired entries and reports how many were removed.
	Prune() (int, error)

	// Clear removes all entries from the cache.
	Clear() error

	// Close releases resources held by the cache.
	Close() error
}

// Backend names accepted by New.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Options selects and sizes a cache backend.
type Options struct {
	Backend string
	Path    string // sqlite only
	Size    int    // memory only
}

// New builds the cache backend named in opts.
func New(opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendSQLite, "":
		c, err := NewSQLiteCache(opts.Path)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMemory:
		c, err := NewMemoryCache(opts.Size)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
