// Package cache provides byte-level caching for snapshots, views, and
// rendered artifacts.
//
// Three backends implement [Cache]:
//   - [FileCache]: entries on disk, used by the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//   - [NullCache]: caching disabled
//
// Keys are derived by a [Keyer] from content hashes, so a changed metadata
// digest or changed filter state always produces a different key.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	TTLSnapshot = 7 * 24 * time.Hour
	TTLView     = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a key/value byte store with optional expiration.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// WithMaxTTL caps the expiration of every entry written through c at max.
// A zero max returns c unchanged.
func WithMaxTTL(c Cache, max time.Duration) Cache {
	if max <= 0 {
		return c
	}
	return &maxTTLCache{Cache: c, max: max}
}

type maxTTLCache struct {
	Cache
	max time.Duration
}

func (c *maxTTLCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > c.max {
		ttl = c.max
	}
	return c.Cache.Set(ctx, key, data, ttl)
}
