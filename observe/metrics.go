package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records execution, cache, and lock metrics for operations.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records an operation execution with duration and error status.
	RecordExecution(ctx context.Context, meta OpMeta, duration time.Duration, err error)

	// RecordCacheLookup records a cache lookup for the named operation.
	RecordCacheLookup(ctx context.Context, op string, hit bool)

	// RecordLockWait records how long an execution waited for a resource lock.
	RecordLockWait(ctx context.Context, wait time.Duration)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	lookupCount  metric.Int64Counter
	lockWaitHist metric.Float64Histogram
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"op.exec.total",
		metric.WithDescription("Total number of operation executions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"op.exec.errors",
		metric.WithDescription("Total number of operation execution errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"op.exec.duration_ms",
		metric.WithDescription("Operation execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	lookupCount, err := meter.Int64Counter(
		"op.cache.lookups",
		metric.WithDescription("Total number of cache lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	lockWaitHist, err := meter.Float64Histogram(
		"op.lock.wait_ms",
		metric.WithDescription("Time spent waiting for resource locks in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		lookupCount:  lookupCount,
		lockWaitHist: lockWaitHist,
	}, nil
}

// RecordExecution records metrics for an operation execution.
func (m *metricsImpl) RecordExecution(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	// Build common attributes
	attrs := []attribute.KeyValue{
		attribute.String("op.id", meta.OpID()),
		attribute.String("op.name", meta.Name),
	}

	// Add namespace if present
	if meta.Namespace != "" {
		attrs = append(attrs, attribute.String("op.namespace", meta.Namespace))
	}

	opt := metric.WithAttributes(attrs...)

	// Always increment total counter
	m.totalCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	durationMs := float64(duration.Milliseconds())
	m.durationHist.Record(ctx, durationMs, opt)
}

// RecordCacheLookup records a cache lookup outcome. Cache keys are
// unbounded hashes and are never recorded as attributes.
func (m *metricsImpl) RecordCacheLookup(ctx context.Context, op string, hit bool) {
	m.lookupCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op.name", op),
		attribute.Bool("cache.hit", hit),
	))
}

// RecordLockWait records lock wait time. Resource paths are unbounded
// and are never recorded as attributes.
func (m *metricsImpl) RecordLockWait(ctx context.Context, wait time.Duration) {
	m.lockWaitHist.Record(ctx, float64(wait.Milliseconds()))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordExecution(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordCacheLookup(ctx context.Context, op string, hit bool) {}

func (m *noopMetrics) RecordLockWait(ctx context.Context, wait time.Duration) {}
