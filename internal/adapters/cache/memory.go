// Package cache implements the in-memory result cache with per-entry
// validity checks.
package cache

import (
	"os"
	"sync"
	"time"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
)

var _ ports.ResultCache = (*Memory)(nil)

// Memory is an in-memory ResultCache.
//
// Expired and stale entries are evicted lazily on access; there is no
// background sweep. Growth is bounded by the set of distinct keys actually
// requested.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*domain.CacheEntry

	hits          uint64
	misses        uint64
	invalidations uint64
}

// NewMemory creates an empty result cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*domain.CacheEntry)}
}

// Get returns the cached value for key after re-checking its validity.
// A stale entry is evicted and reported as a miss. Every call increments
// exactly one of the hit or miss counters.
func (c *Memory) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.countMiss()
		return "", false
	}

	if !c.valid(entry) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Put may have replaced
		// the entry with a fresh one.
		if current, still := c.entries[key]; still && current == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.countMiss()
		return "", false
	}

	c.countHit()
	return entry.Value, true
}

// Put stores a value under key. A later Put overwrites an earlier one; with
// read-only cacheable operations the values are equivalent, so the race
// between two concurrent misses is benign.
func (c *Memory) Put(key, value string, validity domain.Validity) {
	entry := &domain.CacheEntry{
		Value:     value,
		CreatedAt: time.Now(),
		Validity:  validity,
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Invalidate removes a single entry.
func (c *Memory) Invalidate(key string) {
	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.invalidations++
	}
	c.mu.Unlock()
}

// Clear removes all entries. Hit and miss counters are preserved so that
// hit-rate statistics survive a manual cache clear.
func (c *Memory) Clear() {
	c.mu.Lock()
	c.invalidations += uint64(len(c.entries))
	c.entries = make(map[string]*domain.CacheEntry)
	c.mu.Unlock()
}

// Stats returns a snapshot of the cache counters.
func (c *Memory) Stats() ports.CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ports.CacheStats{
		Hits:          c.hits,
		Misses:        c.misses,
		Invalidations: c.invalidations,
		Size:          len(c.entries),
	}
}

// valid re-checks an entry's validity. Any error during the check (for
// example the backing path turned into a directory) makes the entry stale;
// the cache must never be the reason a legitimate call fails.
func (c *Memory) valid(entry *domain.CacheEntry) bool {
	switch entry.Validity.Kind {
	case domain.ValidityMtime:
		info, err := os.Stat(entry.Validity.Path)
		if err != nil || info.IsDir() {
			return false
		}
		return info.ModTime().Equal(entry.Validity.ModTime) &&
			info.Size() == entry.Validity.Size
	case domain.ValidityTTL:
		return time.Now().Before(entry.Validity.ExpiresAt)
	default:
		return false
	}
}

func (c *Memory) countHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *Memory) countMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}
