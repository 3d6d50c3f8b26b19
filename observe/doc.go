// Package observe provides observability primitives for operation execution.
//
// It is a pure instrumentation library: no execution, no caching, no I/O
// beyond exporter setup. Consumers wire the observer into the caching
// middleware and the locked executor through LookupHook and LockWaitHook.
package observe
