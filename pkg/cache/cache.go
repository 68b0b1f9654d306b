// Package cache provides content-addressed caching for simulation traces
// and other derived artifacts.
//
// Backends:
//   - memory: in-process map, the default for single runs
//   - file: directory-backed cache for reuse across CLI invocations
//   - redis: shared cache for tournament fleets
//   - null: disables caching
//
// Keys are SHA-256 based so identical inputs always hit the same entry.
package cache

import (
	"context"
	"time"
)

// TTL values per entry kind.
const (
	// TTLTrace is the lifetime of cached simulation traces. Traces are pure
	// functions of (garden snapshot, turns) so a long TTL is safe.
	TTLTrace = 24 * time.Hour

	// TTLResult is the lifetime of cached tournament run results.
	TTLResult = 7 * 24 * time.Hour
)

// Cache is a byte-oriented cache with optional expiry.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TraceKey builds the cache key for a simulation trace from the serialized
// garden snapshot and the turn count.
func TraceKey(snapshot []byte, turns int) string {
	return hashKey("trace", Hash(snapshot), turns)
}

// ResultKey builds the cache key for a tournament run result.
func ResultKey(configPath string, seed int64) string {
	return hashKey("result", configPath, seed)
}
