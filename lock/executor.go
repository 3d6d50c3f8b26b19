package lock

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Executor runs operations while holding the resource locks they need.
// Paths are acquired in sorted order and released in reverse, so callers
// with overlapping resource sets always take the shared subset in the same
// relative order and cannot deadlock against each other.
type Executor struct {
	registry       *Registry
	acquireTimeout time.Duration
	waitHook       func(path string, wait time.Duration)
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a locked executor backed by the given registry.
func NewExecutor(reg *Registry, opts ...ExecutorOption) (*Executor, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}

	e := &Executor{registry: reg}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// WithAcquireTimeout bounds how long each lock acquisition may wait.
// Zero means wait for as long as the caller's context allows.
func WithAcquireTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.acquireTimeout = d
	}
}

// WithLockWaitHook registers a hook observing how long each lock
// acquisition waited. Called once per acquisition attempt, including
// failed ones.
func WithLockWaitHook(fn func(path string, wait time.Duration)) ExecutorOption {
	return func(e *Executor) {
		e.waitHook = fn
	}
}

// Run extracts the paths the command touches and runs fn while holding
// their locks. A command with no recognizable paths runs unlocked.
func (e *Executor) Run(ctx context.Context, command string, fn func(context.Context) error) error {
	return e.RunPaths(ctx, ExtractPaths(command), fn)
}

// RunPaths runs fn while holding the locks for the given canonical paths.
// The context passed to fn carries the lock owner, so nested Run and
// RunPaths calls on overlapping paths are reentrant rather than
// self-deadlocking. Locks are released in reverse acquisition order even
// if fn panics. Acquisition failure returns ErrAcquireTimeout wrapped with
// the path that could not be taken; locks already held are released and fn
// does not run.
func (e *Executor) RunPaths(ctx context.Context, paths []string, fn func(context.Context) error) error {
	ctx, _ = EnsureOwner(ctx)

	if len(paths) == 0 {
		return fn(ctx)
	}

	// Sorted acquisition order is the deadlock-avoidance protocol.
	sorted := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	// Hold the acquired handles, not just paths: a capacity prune may
	// remap a path while we hold its lock, and releasing through a fresh
	// Get would miss the handle we actually took.
	held := make([]*Handle, 0, len(sorted))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			_ = held[i].Release(ctx)
		}
	}

	for _, p := range sorted {
		h, err := e.acquire(ctx, p)
		if err != nil {
			release()
			return fmt.Errorf("acquiring lock for %s: %w", p, err)
		}
		held = append(held, h)
	}

	defer release()
	return fn(ctx)
}

func (e *Executor) acquire(ctx context.Context, path string) (*Handle, error) {
	h := e.registry.Get(path)

	acquireCtx := ctx
	if e.acquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, e.acquireTimeout)
		defer cancel()
	}

	start := time.Now()
	err := h.Acquire(acquireCtx)
	if e.waitHook != nil {
		e.waitHook(path, time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}
