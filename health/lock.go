package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/toolcache/lock"
)

// RegistryCheckerConfig configures the lock registry health checker.
type RegistryCheckerConfig struct {
	// WarnUtilization is the fraction of capacity past which the registry
	// reports degraded. Value should be between 0 and 1. Default: 0.9 (90%)
	WarnUtilization float64
}

// RegistryChecker checks resource lock registry health. The registry
// prunes idle entries to stay under capacity but never removes a held
// lock, so sitting over capacity means every entry is held and pruning
// cannot keep up.
type RegistryChecker struct {
	config   RegistryCheckerConfig
	registry *lock.Registry
}

// NewRegistryChecker creates a new lock registry health checker.
func NewRegistryChecker(reg *lock.Registry, config RegistryCheckerConfig) *RegistryChecker {
	if config.WarnUtilization <= 0 || config.WarnUtilization >= 1 {
		config.WarnUtilization = 0.9
	}

	return &RegistryChecker{config: config, registry: reg}
}

// Name returns the name of this checker.
func (r *RegistryChecker) Name() string {
	return "locks"
}

// Check performs the lock registry health check.
func (r *RegistryChecker) Check(ctx context.Context) Result {
	// Check context first
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	if r.registry == nil {
		return Unhealthy("registry not configured", ErrCheckFailed)
	}

	stats := r.registry.Stats()

	details := map[string]any{
		"locks":    stats.Locks,
		"capacity": stats.Capacity,
		"sweeps":   stats.Sweeps,
		"expired":  stats.Expired,
		"pruned":   stats.Pruned,
	}

	if stats.Locks > stats.Capacity {
		return Degraded(
			fmt.Sprintf("lock registry over capacity: %d/%d entries", stats.Locks, stats.Capacity),
		).WithDetails(details)
	}

	if float64(stats.Locks) >= float64(stats.Capacity)*r.config.WarnUtilization {
		return Degraded(
			fmt.Sprintf("lock registry nearly full: %d/%d entries", stats.Locks, stats.Capacity),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("lock registry normal: %d/%d entries", stats.Locks, stats.Capacity),
	).WithDetails(details)
}
