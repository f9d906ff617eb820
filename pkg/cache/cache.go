package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
