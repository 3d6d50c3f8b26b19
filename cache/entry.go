package cache

import (
	"os"
	"time"
)

// entry is a stored cache record. Immutable after creation; a Set on an
// existing key replaces the whole entry.
type entry struct {
	value     []byte
	createdAt time.Time
	deps      []string
}

// age reports how long ago the entry was stored.
func (e *entry) age(now time.Time) time.Duration {
	return now.Sub(e.createdAt)
}

// fresh reports whether the entry is still valid at now under the given TTL.
// Dependency checks are conservative: a dependency that cannot be stat'd
// (missing, permission error) counts as modified.
func (e *entry) fresh(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	if e.age(now) > ttl {
		return false
	}
	return !e.depsModified()
}

// depsModified reports whether any recorded file dependency changed after
// the entry was stored.
func (e *entry) depsModified() bool {
	for _, dep := range e.deps {
		info, err := os.Stat(dep)
		if err != nil {
			return true
		}
		if info.ModTime().After(e.createdAt) {
			return true
		}
	}
	return false
}

// dependsOn reports whether the entry lists path among its dependencies.
func (e *entry) dependsOn(path string) bool {
	for _, dep := range e.deps {
		if dep == path {
			return true
		}
	}
	return false
}
