// Package cache provides deterministic caching for operation executions.
//
// It provides a Cache interface with a memory implementation bounded by
// write-time LRU eviction, SHA-256-based key derivation over operation
// arguments, read-time freshness checks against a TTL and recorded file
// dependencies, and a transparent caching middleware.
package cache
