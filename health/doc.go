// Package health provides health checking primitives for the operation
// cache and its lock registry.
//
// This package implements a generic health checking framework that can be
// used to monitor the components of a caching deployment. It provides
// interfaces for defining health checks, aggregating results from multiple
// checkers, and exposing health status via HTTP endpoints. Two domain
// checkers are built in: CacheChecker watches cache occupancy and hit
// ratio, and RegistryChecker watches lock registry occupancy.
//
// # Core Concepts
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy.
//
// # Basic Usage
//
//	// Create a cache checker
//	cacheCheck := health.NewCacheChecker(c, health.CacheCheckerConfig{
//	    WarnUtilization: 0.90,
//	    MinHitRatio:     0.25,
//	})
//
//	// Check health
//	result := cacheCheck.Check(ctx)
//	if result.Status == health.StatusDegraded {
//	    log.Printf("Cache degraded: %s", result.Message)
//	}
//
// # Aggregating Health Checks
//
// Use Aggregator to combine multiple health checks into a single composite check:
//
//	agg := health.NewAggregator()
//	agg.Register("cache", cacheChecker)
//	agg.Register("locks", registryChecker)
//
//	// Check all components
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP Endpoints
//
// The package provides HTTP handlers for common health check patterns:
//
//	// Liveness probe (for Kubernetes)
//	http.Handle("/healthz", health.LivenessHandler())
//
//	// Readiness probe with component checks
//	http.Handle("/readyz", health.ReadinessHandler(aggregator))
//
//	// Detailed health status
//	http.Handle("/health", health.DetailedHandler(aggregator))
package health
