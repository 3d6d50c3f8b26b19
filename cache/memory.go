package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"
)

// Default configuration values for MemoryCache.
const (
	DefaultMaxEntries = 1024
	DefaultTTL        = 5 * time.Minute
)

// EventKind identifies the cache state change carried by an Event.
type EventKind int

const (
	// EventHit is a lookup that returned a fresh value.
	EventHit EventKind = iota
	// EventMiss is a lookup that found nothing usable.
	EventMiss
	// EventStore is a successful Set.
	EventStore
	// EventEvict is a capacity eviction of the oldest-stored entry.
	EventEvict
	// EventExpire is a lazy removal after a failed freshness check.
	EventExpire
	// EventInvalidate is a removal by Delete, InvalidateFile, or
	// InvalidatePattern.
	EventInvalidate
)

// Event describes a single cache state change.
type Event struct {
	Kind EventKind
	Key  string
}

// Config configures a MemoryCache. The zero value takes defaults.
type Config struct {
	// MaxEntries bounds the number of stored entries.
	// Default: DefaultMaxEntries. Values < 1 take the default.
	MaxEntries int

	// DefaultTTL is the freshness horizon used by Get.
	// Default: DefaultTTL. Values <= 0 take the default.
	DefaultTTL time.Duration

	// Clock supplies the current time. Default: time.Now.
	Clock func() time.Time

	// OnEvent, when set, receives cache events after the corresponding
	// state change, outside the cache mutex. It may call back into the
	// cache. Clear emits no per-key events.
	OnEvent func(Event)
}

// MemoryCache is an in-memory cache bounded by write-time LRU eviction.
//
// Freshness is decided at read time: an entry is returned only while its
// age is within the TTL and every recorded file dependency still exists
// with a modification time at or before the entry's storage time. Stale
// entries are removed lazily during the lookup that detects them.
//
// Eviction order is storage recency, not access recency: when a new key
// arrives at capacity, the entry stored longest ago is dropped, regardless
// of how recently it was read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	cfg     Config
	stats   counters
}

// counters are guarded by MemoryCache.mu.
type counters struct {
	hits          uint64
	misses        uint64
	evictions     uint64
	expirations   uint64
	invalidations uint64
}

// NewMemoryCache creates a new in-memory cache with the given config.
func NewMemoryCache(cfg Config) *MemoryCache {
	if cfg.MaxEntries < 1 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &MemoryCache{
		entries: make(map[string]*entry),
		cfg:     cfg,
	}
}

func (c *MemoryCache) now() time.Time {
	return c.cfg.Clock()
}

func (c *MemoryCache) emit(kind EventKind, key string) {
	if c.cfg.OnEvent != nil {
		c.cfg.OnEvent(Event{Kind: kind, Key: key})
	}
}

// Get retrieves a value using the configured default TTL.
// Returns (nil, false) on miss or staleness.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	return c.GetTTL(ctx, key, c.cfg.DefaultTTL)
}

// GetTTL retrieves a value using a per-read TTL override. A stale entry is
// removed during the lookup; removal re-checks entry identity under the
// write lock so a concurrent overwrite is never clobbered.
func (c *MemoryCache) GetTTL(_ context.Context, key string, ttl time.Duration) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		c.stats.misses++
		c.mu.Unlock()
		c.emit(EventMiss, key)
		return nil, false
	}

	// Dependency stats touch the filesystem; keep them outside the mutex.
	if e.fresh(c.now(), ttl) {
		c.mu.Lock()
		c.stats.hits++
		c.mu.Unlock()
		c.emit(EventHit, key)
		return e.value, true
	}

	expired := false
	c.mu.Lock()
	if cur, present := c.entries[key]; present && cur == e {
		delete(c.entries, key)
		c.stats.expirations++
		expired = true
	}
	c.stats.misses++
	c.mu.Unlock()
	if expired {
		c.emit(EventExpire, key)
	}
	c.emit(EventMiss, key)
	return nil, false
}

// Set stores a value, recording the given file dependencies. Dependency
// paths are absolute-ized so later InvalidateFile calls match regardless
// of how the caller spelled them. Inserting a new key at capacity first
// evicts the entry stored longest ago; overwriting never evicts.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, deps ...string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	var normalized []string
	if len(deps) > 0 {
		normalized = make([]string, len(deps))
		for i, dep := range deps {
			normalized[i] = normalizeDep(dep)
		}
	}

	var evicted string
	c.mu.Lock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.cfg.MaxEntries {
		evicted = c.evictOldestLocked()
	}
	c.entries[key] = &entry{
		value:     value,
		createdAt: c.now(),
		deps:      normalized,
	}
	c.mu.Unlock()

	if evicted != "" {
		c.emit(EventEvict, evicted)
	}
	c.emit(EventStore, key)
	return nil
}

// evictOldestLocked removes the entry with the oldest createdAt and returns
// its key. Caller must hold c.mu.
func (c *MemoryCache) evictOldestLocked() string {
	var oldestKey string
	var oldestAt time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.createdAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.createdAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.stats.evictions++
	}
	return oldestKey
}

// Delete removes a value from the cache. Idempotent - no error on miss.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	_, present := c.entries[key]
	if present {
		delete(c.entries, key)
		c.stats.invalidations++
	}
	c.mu.Unlock()
	if present {
		c.emit(EventInvalidate, key)
	}
	return nil
}

// InvalidateFile removes every entry that lists path among its file
// dependencies. The path is normalized the same way Set normalizes
// dependencies. Returns the number of entries removed.
func (c *MemoryCache) InvalidateFile(_ context.Context, path string) int {
	norm := normalizeDep(path)

	c.mu.Lock()
	var removed []string
	for k, e := range c.entries {
		if e.dependsOn(norm) {
			delete(c.entries, k)
			removed = append(removed, k)
		}
	}
	c.stats.invalidations += uint64(len(removed))
	c.mu.Unlock()

	for _, k := range removed {
		c.emit(EventInvalidate, k)
	}
	return len(removed)
}

// InvalidatePattern removes every entry whose key matches the shell-style
// pattern (filepath.Match syntax). Returns the number of entries removed,
// or ErrBadPattern for a malformed pattern.
func (c *MemoryCache) InvalidatePattern(_ context.Context, pattern string) (int, error) {
	// filepath.Match reports a malformed pattern regardless of the name.
	if _, err := filepath.Match(pattern, ""); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}

	c.mu.Lock()
	var removed []string
	for k := range c.entries {
		if ok, _ := filepath.Match(pattern, k); ok {
			delete(c.entries, k)
			removed = append(removed, k)
		}
	}
	c.stats.invalidations += uint64(len(removed))
	c.mu.Unlock()

	for _, k := range removed {
		c.emit(EventInvalidate, k)
	}
	return len(removed), nil
}

// Clear removes all entries and returns the number removed.
func (c *MemoryCache) Clear(_ context.Context) int {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]*entry)
	c.stats.invalidations += uint64(n)
	c.mu.Unlock()
	return n
}

// Len returns the current number of stored entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a point-in-time snapshot of cache state and counters.
func (c *MemoryCache) Stats(_ context.Context) Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, min(len(c.entries), StatsKeySample))
	for k := range c.entries {
		if len(keys) >= StatsKeySample {
			break
		}
		keys = append(keys, k)
	}

	return Stats{
		Entries:       len(c.entries),
		Capacity:      c.cfg.MaxEntries,
		Hits:          c.stats.hits,
		Misses:        c.stats.misses,
		Evictions:     c.stats.evictions,
		Expirations:   c.stats.expirations,
		Invalidations: c.stats.invalidations,
		Keys:          keys,
	}
}

// normalizeDep absolute-izes a dependency path so Set and InvalidateFile
// agree on spelling. Falls back to the cleaned input when absolute-ization
// fails; never errors.
func normalizeDep(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Ensure MemoryCache implements Cache
var _ Cache = (*MemoryCache)(nil)
