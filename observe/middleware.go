package observe

import (
	"context"
	"time"
)

// ExecuteFunc is the signature for operation execution functions.
// This is the standard function signature that Middleware wraps.
type ExecuteFunc func(ctx context.Context, op OpMeta, input any) (any, error)

// Middleware wraps operation execution with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped function are recorded and propagated unchanged.
//   - Ownership: Input/output values are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps an ExecuteFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, op OpMeta, input any) (any, error) {
		// Start span
		ctx, span := m.tracer.StartSpan(ctx, op)

		// Record start time
		start := time.Now()

		// Execute the function
		result, err := fn(ctx, op, input)

		// Calculate duration
		duration := time.Since(start)

		// End span (records error status if err != nil)
		m.tracer.EndSpan(span, err)

		// Record metrics
		m.metrics.RecordExecution(ctx, op, duration, err)

		// Log the execution
		opLogger := m.logger.WithOp(op)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			opLogger.Error(ctx, "operation execution failed", fields...)
		} else {
			opLogger.Info(ctx, "operation execution completed", fields...)
		}

		return result, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}

// MetricsFromObserver creates a Metrics instance from an Observer, for
// callers that want the lookup and lock-wait hooks without the full
// execution middleware.
func MetricsFromObserver(obs Observer) (Metrics, error) {
	return newMetrics(obs.Meter())
}

// LookupHook adapts Metrics into a cache lookup hook. The returned
// function matches the lookup callback shape used by caching layers:
// it receives the operation name, the derived key, and the hit outcome.
// The key is discarded; keys are unbounded hashes.
func LookupHook(m Metrics) func(ctx context.Context, op, key string, hit bool) {
	return func(ctx context.Context, op, _ string, hit bool) {
		m.RecordCacheLookup(ctx, op, hit)
	}
}

// LockWaitHook adapts Metrics into a lock wait hook. The returned
// function matches the wait callback shape used by locking layers: it
// receives the resource path and the time spent waiting. The path is
// discarded; paths are unbounded.
func LockWaitHook(m Metrics) func(path string, wait time.Duration) {
	return func(_ string, wait time.Duration) {
		m.RecordLockWait(context.Background(), wait)
	}
}
