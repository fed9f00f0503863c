// Package cache stores encoded simulation results so that seeded runs can be
// replayed without simulating again.
//
// # Backends
//
//   - [FileCache]: JSON entry files under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for batch jobs on several hosts
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] derives keys from everything that determines a result: sample
// size, changepoint, theta and seed. Unseeded runs are never cached because
// their results are not reproducible.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiration.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}

// Default TTLs for cached results.
const (
	// TTLTree applies to single seeded simulations.
	TTLTree = 7 * 24 * time.Hour

	// TTLBatch applies to aggregated batch summaries.
	TTLBatch = 30 * 24 * time.Hour
)
