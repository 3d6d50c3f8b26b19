package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilCache        = errors.New("cache: cache is nil")
	ErrInvalidKey      = errors.New("cache: key is invalid")
	ErrKeyTooLong      = errors.New("cache: key exceeds max length")
	ErrNotSerializable = errors.New("cache: argument is not serializable")
	ErrBadPattern      = errors.New("cache: malformed key pattern")
	ErrWatcherClosed   = errors.New("cache: watcher is closed")
)

// Cache is the interface for caching operation results.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get and GetTTL never error; they return (nil, false) on miss.
// - Freshness: evaluated at read time. An entry is fresh when its age is
//   within the TTL and every recorded file dependency still exists with a
//   modification time at or before the entry's storage time.
// - Immutability: stored and returned byte slices are shared, not copied.
//   Callers must not mutate a value after Set or after a hit returns it;
//   the same slice may be handed to concurrent readers.
type Cache interface {
	// Get retrieves a cached value using the default TTL.
	// Returns (nil, false) on miss or staleness.
	Get(ctx context.Context, key string) ([]byte, bool)

	// GetTTL retrieves a cached value using a per-read TTL override.
	GetTTL(ctx context.Context, key string, ttl time.Duration) ([]byte, bool)

	// Set stores a value, recording the given file dependencies.
	// Inserting a new key at capacity evicts the oldest-stored entry.
	Set(ctx context.Context, key string, value []byte, deps ...string) error

	// Delete removes a cached value. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error

	// InvalidateFile removes every entry that depends on the given file.
	// Returns the number of entries removed.
	InvalidateFile(ctx context.Context, path string) int

	// InvalidatePattern removes every entry whose key matches the
	// shell-style pattern. Returns the number of entries removed.
	InvalidatePattern(ctx context.Context, pattern string) (int, error)

	// Clear removes all entries. Returns the number of entries removed.
	Clear(ctx context.Context) int

	// Stats returns a point-in-time snapshot of cache state and counters.
	Stats(ctx context.Context) Stats
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
