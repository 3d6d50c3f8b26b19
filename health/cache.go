package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/toolcache/cache"
)

// CacheCheckerConfig configures the cache health checker.
type CacheCheckerConfig struct {
	// WarnUtilization is the fraction of capacity past which the cache
	// reports degraded. Value should be between 0 and 1. Default: 0.9 (90%)
	WarnUtilization float64

	// MinHitRatio is the hit ratio below which the cache reports degraded.
	// Value should be between 0 and 1. Zero disables the hit ratio check.
	// Default: 0 (disabled)
	MinHitRatio float64

	// MinSamples is the number of lookups required before the hit ratio
	// check applies. A cold cache always misses; judging it too early
	// reports noise. Default: 100
	MinSamples uint64
}

// CacheChecker checks operation cache health: occupancy against capacity
// and, optionally, the observed hit ratio.
type CacheChecker struct {
	config CacheCheckerConfig
	cache  cache.Cache
}

// NewCacheChecker creates a new cache health checker.
func NewCacheChecker(c cache.Cache, config CacheCheckerConfig) *CacheChecker {
	if config.WarnUtilization <= 0 || config.WarnUtilization >= 1 {
		config.WarnUtilization = 0.9
	}
	if config.MinHitRatio < 0 || config.MinHitRatio >= 1 {
		config.MinHitRatio = 0
	}
	if config.MinSamples == 0 {
		config.MinSamples = 100
	}

	return &CacheChecker{config: config, cache: c}
}

// Name returns the name of this checker.
func (c *CacheChecker) Name() string {
	return "cache"
}

// Check performs the cache health check.
func (c *CacheChecker) Check(ctx context.Context) Result {
	// Check context first
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	if c.cache == nil {
		return Unhealthy("cache not configured", ErrCheckFailed)
	}

	stats := c.cache.Stats(ctx)

	details := map[string]any{
		"entries":       stats.Entries,
		"capacity":      stats.Capacity,
		"utilization":   stats.Utilization(),
		"hits":          stats.Hits,
		"misses":        stats.Misses,
		"hit_ratio":     stats.HitRatio(),
		"evictions":     stats.Evictions,
		"expirations":   stats.Expirations,
		"invalidations": stats.Invalidations,
	}

	if stats.Capacity > 0 && stats.Utilization() >= c.config.WarnUtilization {
		return Degraded(
			fmt.Sprintf("cache nearly full: %d/%d entries", stats.Entries, stats.Capacity),
		).WithDetails(details)
	}

	lookups := stats.Hits + stats.Misses
	if c.config.MinHitRatio > 0 && lookups >= c.config.MinSamples && stats.HitRatio() < c.config.MinHitRatio {
		return Degraded(
			fmt.Sprintf("cache hit ratio low: %.1f%%", stats.HitRatio()*100),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("cache normal: %d/%d entries", stats.Entries, stats.Capacity),
	).WithDetails(details)
}
