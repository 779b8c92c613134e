// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/relay/internal/core/domain"

// CacheStats is a snapshot of result cache counters.
type CacheStats struct {
	Hits          uint64
	Misses        uint64
	Invalidations uint64
	Size          int
}

// ResultCache caches operation results with per-entry validity.
//
// Contract:
//   - Implementations must be safe for concurrent use.
//   - Get re-checks validity on every access and evicts stale entries lazily.
//   - Every Get increments exactly one of the hit or miss counters, including
//     misses triggered by eviction.
//   - A validity check that itself fails is a miss, never an error.
type ResultCache interface {
	// Get returns the cached value for key, or false on miss.
	Get(key string) (string, bool)

	// Put stores a value under key with the given validity.
	Put(key, value string, validity domain.Validity)

	// Invalidate removes a single entry. Idempotent.
	Invalidate(key string)

	// Clear removes all entries. Counters for hits and misses are preserved.
	Clear()

	// Stats returns a snapshot of the cache counters.
	Stats() CacheStats
}
