// Package cache provides byte-oriented caching for the portfolio service.
//
// The [Cache] interface has four backends:
//   - [FileCache]: JSON entry files under ~/.cache/reactiveshots (CLI default)
//   - [MemoryCache]: in-process cache backed by patrickmn/go-cache
//   - [RedisCache]: shared cache for multi-instance deployments
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so that the CLI, the server and the gallery
// runner agree on key layout. Values are opaque bytes, typically JSON.
//
// The package also provides [Retryable] and [RetryWithBackoff], used by the
// HTTP clients to retry transient upstream failures.
package cache

import (
	"context"
	"time"
)

// Cache is the interface implemented by all cache backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per entry kind.
const (
	// TTLAlbum bounds how stale album metadata from the content API may be.
	TTLAlbum = 10 * time.Minute

	// TTLSize is long: a published image's natural size never changes.
	TTLSize = 30 * 24 * time.Hour

	// TTLLayout memoizes computed layouts for a width bucket.
	TTLLayout = time.Hour
)
