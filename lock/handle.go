package lock

import (
	"context"
	"fmt"
	"sync"
)

// Handle is a reentrant, context-aware mutual-exclusion lock for a single
// resource. Reentrancy is keyed on the Owner carried in the context: an
// owner that already holds the lock may acquire it again without blocking,
// and must release once per acquisition. Acquisitions without an owner in
// the context are never reentrant; each one is a distinct holder.
type Handle struct {
	sem chan struct{}

	mu    sync.Mutex
	owner Owner
	holds int
}

// NewHandle creates an unheld lock handle.
func NewHandle() *Handle {
	return &Handle{sem: make(chan struct{}, 1)}
}

// Acquire takes the lock, blocking until it is free or ctx is done.
// Returns ErrAcquireTimeout if the context is cancelled or times out while
// waiting.
func (h *Handle) Acquire(ctx context.Context) error {
	owner, _ := OwnerFromContext(ctx)

	if owner != "" {
		h.mu.Lock()
		if h.holds > 0 && h.owner == owner {
			h.holds++
			h.mu.Unlock()
			return nil
		}
		h.mu.Unlock()
	}

	// Fast path: try non-blocking acquire
	select {
	case h.sem <- struct{}{}:
		h.grant(owner)
		return nil
	default:
		// Fall through to waiting logic
	}

	select {
	case h.sem <- struct{}{}:
		h.grant(owner)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrAcquireTimeout, ctx.Err())
	}
}

// TryAcquire takes the lock without blocking.
// Returns false if the lock is held by another owner.
func (h *Handle) TryAcquire(ctx context.Context) bool {
	owner, _ := OwnerFromContext(ctx)

	if owner != "" {
		h.mu.Lock()
		if h.holds > 0 && h.owner == owner {
			h.holds++
			h.mu.Unlock()
			return true
		}
		h.mu.Unlock()
	}

	select {
	case h.sem <- struct{}{}:
		h.grant(owner)
		return true
	default:
		return false
	}
}

// Release gives up one hold on the lock. The lock becomes free once the
// hold count of the acquiring owner reaches zero. Returns ErrNotHeld if
// the lock is not held, or is held by a different owner.
func (h *Handle) Release(ctx context.Context) error {
	owner, _ := OwnerFromContext(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.holds == 0 {
		return ErrNotHeld
	}
	if h.owner != "" && h.owner != owner {
		return ErrNotHeld
	}

	h.holds--
	if h.holds == 0 {
		h.owner = ""
		<-h.sem
	}
	return nil
}

// Held reports whether the lock is currently held by anyone.
func (h *Handle) Held() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.holds > 0
}

// HoldCount returns the current reentrant hold depth.
func (h *Handle) HoldCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.holds
}

func (h *Handle) grant(owner Owner) {
	h.mu.Lock()
	h.owner = owner
	h.holds = 1
	h.mu.Unlock()
}
