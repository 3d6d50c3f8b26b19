package lock

import (
	"sync"
	"time"
)

const (
	// DefaultLockTTL is the idle lease after which an unheld lock entry
	// becomes eligible for removal.
	DefaultLockTTL = 10 * time.Minute

	// DefaultMaxLocks is the default registry capacity.
	DefaultMaxLocks = 512

	// DefaultSweepEvery is the default sweep cadence in Get calls.
	DefaultSweepEvery = 64
)

// RegistryConfig configures a lock registry.
type RegistryConfig struct {
	// LockTTL is how long an unheld lock entry may sit idle before a sweep
	// removes it.
	// Default: 10 minutes
	LockTTL time.Duration

	// MaxLocks bounds the number of registry entries. At capacity the
	// oldest unheld entries are pruned to make room. Held entries are
	// never pruned, so the registry may temporarily exceed the bound when
	// every entry is held.
	// Default: 512
	MaxLocks int

	// SweepEvery triggers an inline expiry sweep every Nth Get call.
	// Default: 64
	SweepEvery int

	// Clock returns the current time. Used in tests.
	// Default: time.Now
	Clock func() time.Time
}

type lockEntry struct {
	handle       *Handle
	lastAccessed time.Time
}

// Registry maps canonical resource paths to lock handles. Entries are
// created lazily, leased for LockTTL from their last access, and removed
// by periodic sweeps or capacity pruning once the lease lapses unheld.
//
// Callers must pass canonical paths (see ExtractPaths) so that every
// textual reference to a resource maps to the same handle. The registry
// mutex guards only the map bookkeeping; it is never held while a caller
// waits on a resource lock.
type Registry struct {
	cfg RegistryConfig

	mu    sync.Mutex
	locks map[string]*lockEntry
	calls uint64

	sweeps  uint64
	expired uint64
	pruned  uint64
}

// NewRegistry creates a lock registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	// Apply defaults
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	if cfg.MaxLocks <= 0 {
		cfg.MaxLocks = DefaultMaxLocks
	}
	if cfg.SweepEvery <= 0 {
		cfg.SweepEvery = DefaultSweepEvery
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Registry{
		cfg:   cfg,
		locks: make(map[string]*lockEntry),
	}
}

// Get returns the lock handle for path, creating it on first request.
// Repeated calls for the same path return the same handle while its entry
// lives, so concurrent callers on one path serialize on one lock. Every
// call renews the entry's lease; every SweepEvery-th call also sweeps
// expired leases, and at capacity the oldest unheld entries are pruned
// (never the one being requested).
func (r *Registry) Get(path string) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.calls%uint64(r.cfg.SweepEvery) == 0 {
		r.sweepLocked()
	}

	if e, ok := r.locks[path]; ok {
		e.lastAccessed = r.cfg.Clock()
		return e.handle
	}

	if len(r.locks) >= r.cfg.MaxLocks {
		r.pruneLocked(path)
	}

	e := &lockEntry{handle: NewHandle(), lastAccessed: r.cfg.Clock()}
	r.locks[path] = e
	return e.handle
}

// Sweep removes every entry whose lease has lapsed and whose lock is not
// held. Returns the number of entries removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked()
}

// Len returns the number of registry entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}

// Stats returns a snapshot of registry counters.
func (r *Registry) Stats() RegistryStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return RegistryStats{
		Locks:    len(r.locks),
		Capacity: r.cfg.MaxLocks,
		Sweeps:   r.sweeps,
		Expired:  r.expired,
		Pruned:   r.pruned,
	}
}

// RegistryStats describes registry occupancy and churn.
type RegistryStats struct {
	// Locks is the current number of entries.
	Locks int

	// Capacity is the configured MaxLocks bound.
	Capacity int

	// Sweeps counts expiry sweeps run.
	Sweeps uint64

	// Expired counts entries removed because their lease lapsed.
	Expired uint64

	// Pruned counts entries removed to stay under capacity.
	Pruned uint64
}

// sweepLocked removes expired unheld entries. Caller must hold r.mu.
func (r *Registry) sweepLocked() int {
	now := r.cfg.Clock()
	removed := 0
	for path, e := range r.locks {
		if now.Sub(e.lastAccessed) > r.cfg.LockTTL && !e.handle.Held() {
			delete(r.locks, path)
			removed++
		}
	}
	r.sweeps++
	r.expired += uint64(removed)
	return removed
}

// pruneLocked removes the oldest unheld entries until the registry is
// under capacity. The entry for requested, if any, is never pruned.
// Caller must hold r.mu.
func (r *Registry) pruneLocked(requested string) {
	for len(r.locks) >= r.cfg.MaxLocks {
		oldest := ""
		var oldestAt time.Time
		for path, e := range r.locks {
			if path == requested || e.handle.Held() {
				continue
			}
			if oldest == "" || e.lastAccessed.Before(oldestAt) {
				oldest = path
				oldestAt = e.lastAccessed
			}
		}
		if oldest == "" {
			return
		}
		delete(r.locks, oldest)
		r.pruned++
	}
}
