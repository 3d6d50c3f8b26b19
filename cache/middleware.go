package cache

import (
	"context"
	"strings"

	"golang.org/x/sync/singleflight"
)

// ExecutorFunc is the function signature for operation execution.
type ExecutorFunc func(ctx context.Context, op string, args []any, kwargs map[string]any) ([]byte, error)

// DependencyExtractor computes the file paths an operation's result depends
// on, recorded at store time so later file changes invalidate the entry.
type DependencyExtractor func(op string, args []any, kwargs map[string]any) []string

// SkipRule determines whether to skip caching for a given operation.
// Returns true if caching should be skipped.
type SkipRule func(op string, tags []string) bool

// UnsafeTags are tags that indicate an operation has side effects and
// should not be cached.
var UnsafeTags = []string{"write", "danger", "unsafe", "mutation", "delete"}

// DefaultSkipRule skips caching for operations with unsafe tags.
// Tag matching is case-insensitive.
func DefaultSkipRule(_ string, tags []string) bool {
	for _, tag := range tags {
		tagLower := strings.ToLower(tag)
		for _, unsafe := range UnsafeTags {
			if tagLower == unsafe {
				return true
			}
		}
	}
	return false
}

// MiddlewareConfig configures a Middleware.
type MiddlewareConfig struct {
	// Policy controls whether and how long results are cached.
	// The zero value disables caching; use DefaultPolicy() to enable.
	Policy Policy

	// Skip decides per-operation whether to bypass the cache.
	// Default: DefaultSkipRule.
	Skip SkipRule

	// Deps, when set, extracts file dependencies recorded with each
	// stored result.
	Deps DependencyExtractor

	// Coalesce collapses concurrent misses for the same key into a
	// single execution. Default: false.
	Coalesce bool

	// Watcher, when set, is registered with the dependencies of each
	// stored result so file changes invalidate proactively.
	Watcher *Watcher

	// OnLookup, when set, observes every cache lookup the middleware
	// performs.
	OnLookup func(ctx context.Context, op, key string, hit bool)
}

// Middleware wraps operation execution with caching.
//
// Contract:
// - On cache hit the executor is not invoked and its side effects do not
//   occur.
// - Executor errors are returned unchanged and never cached.
// - A key derivation failure is returned as an error; the middleware never
//   silently executes uncached on a malformed argument.
type Middleware struct {
	cache Cache
	keyer Keyer
	cfg   MiddlewareConfig
	group singleflight.Group
}

// NewMiddleware creates a new caching middleware around cache.
// A nil keyer takes the default keyer; a nil Skip takes DefaultSkipRule.
func NewMiddleware(cache Cache, keyer Keyer, cfg MiddlewareConfig) (*Middleware, error) {
	if cache == nil {
		return nil, ErrNilCache
	}
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	if cfg.Skip == nil {
		cfg.Skip = DefaultSkipRule
	}
	return &Middleware{
		cache: cache,
		keyer: keyer,
		cfg:   cfg,
	}, nil
}

// Execute runs the operation with caching.
// On cache hit, returns the cached result without calling executor.
// On cache miss, calls executor and caches a successful result.
func (m *Middleware) Execute(
	ctx context.Context,
	op string,
	args []any,
	kwargs map[string]any,
	tags []string,
	executor ExecutorFunc,
) ([]byte, error) {
	// Check if caching should be skipped
	if !m.cfg.Policy.AllowUnsafe && m.cfg.Skip(op, tags) {
		return executor(ctx, op, args, kwargs)
	}

	// Check if caching is enabled by policy
	if !m.cfg.Policy.ShouldCache() {
		return executor(ctx, op, args, kwargs)
	}

	// Generate cache key. A derivation failure is a caller bug and is
	// surfaced, not papered over with an uncached execution.
	key, err := m.keyer.Key(op, args, kwargs)
	if err != nil {
		return nil, err
	}

	ttl := m.cfg.Policy.TTLFor(op)
	if cached, ok := m.cache.GetTTL(ctx, key, ttl); ok {
		m.lookup(ctx, op, key, true)
		return cached, nil
	}
	m.lookup(ctx, op, key, false)

	if m.cfg.Coalesce {
		v, err, _ := m.group.Do(key, func() (any, error) {
			return m.executeAndStore(ctx, key, op, args, kwargs, executor)
		})
		if err != nil {
			return nil, err
		}
		return v.([]byte), nil
	}
	return m.executeAndStore(ctx, key, op, args, kwargs, executor)
}

// executeAndStore runs the executor and caches a successful result along
// with its extracted file dependencies.
func (m *Middleware) executeAndStore(
	ctx context.Context,
	key, op string,
	args []any,
	kwargs map[string]any,
	executor ExecutorFunc,
) ([]byte, error) {
	result, err := executor(ctx, op, args, kwargs)
	if err != nil {
		// Don't cache errors
		return result, err
	}

	var deps []string
	if m.cfg.Deps != nil {
		deps = m.cfg.Deps(op, args, kwargs)
	}
	_ = m.cache.Set(ctx, key, result, deps...)
	if m.cfg.Watcher != nil && len(deps) > 0 {
		// Watching is best effort; read-time stat checks still apply.
		_ = m.cfg.Watcher.Watch(deps...)
	}
	return result, nil
}

func (m *Middleware) lookup(ctx context.Context, op, key string, hit bool) {
	if m.cfg.OnLookup != nil {
		m.cfg.OnLookup(ctx, op, key, hit)
	}
}

// WrappedFunc is a cached operation bound to a fixed name and tag set.
type WrappedFunc func(ctx context.Context, args []any, kwargs map[string]any) ([]byte, error)

// Wrap binds an operation to the middleware. Distinct operations wrapped
// over one shared cache cannot collide: the operation name participates in
// every derived key.
func (m *Middleware) Wrap(op string, tags []string, fn ExecutorFunc) WrappedFunc {
	return func(ctx context.Context, args []any, kwargs map[string]any) ([]byte, error) {
		return m.Execute(ctx, op, args, kwargs, tags, fn)
	}
}
