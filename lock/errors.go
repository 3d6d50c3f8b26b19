package lock

import "errors"

// Sentinel errors for lock operations.
var (
	// ErrAcquireTimeout is returned when a resource lock cannot be acquired
	// before the caller's context is cancelled or times out.
	ErrAcquireTimeout = errors.New("lock: acquisition timed out")

	// ErrNotHeld is returned when releasing a lock the caller does not hold.
	ErrNotHeld = errors.New("lock: lock is not held")

	// ErrNilRegistry is returned when an executor is constructed without a registry.
	ErrNilRegistry = errors.New("lock: registry is nil")
)
