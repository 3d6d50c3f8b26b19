package cache

// StatsKeySample is the maximum number of keys included in a Stats snapshot.
const StatsKeySample = 16

// Stats is a point-in-time snapshot of cache state and lifetime counters.
type Stats struct {
	// Entries is the current number of stored entries.
	Entries int

	// Capacity is the configured maximum number of entries.
	Capacity int

	// Hits counts lookups that returned a fresh value.
	Hits uint64

	// Misses counts lookups that found nothing usable, including entries
	// dropped for staleness during the lookup.
	Misses uint64

	// Evictions counts entries removed to make room for new writes.
	Evictions uint64

	// Expirations counts entries dropped lazily after failing a read-time
	// freshness check (TTL or dependency).
	Expirations uint64

	// Invalidations counts entries removed by InvalidateFile,
	// InvalidatePattern, Delete, and Clear.
	Invalidations uint64

	// Keys is a bounded sample of current keys, at most StatsKeySample,
	// in no particular order. Diagnostic only.
	Keys []string
}

// HitRatio returns Hits / (Hits + Misses), or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Utilization returns Entries / Capacity, or 0 for an unbounded cache.
func (s Stats) Utilization() float64 {
	if s.Capacity <= 0 {
		return 0
	}
	return float64(s.Entries) / float64(s.Capacity)
}
