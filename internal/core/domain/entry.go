package domain

import "time"

// ValidityKind discriminates the validity variants of a cache entry.
type ValidityKind uint8

const (
	// ValidityMtime ties an entry to the modification time and size of a
	// backing file. The entry is stale once either changes.
	ValidityMtime ValidityKind = iota
	// ValidityTTL ties an entry to a fixed expiry instant.
	ValidityTTL
)

// Validity describes when a cache entry stops being trustworthy.
// Exactly one variant's fields are meaningful, selected by Kind.
type Validity struct {
	Kind ValidityKind

	// Mtime variant.
	Path    string
	ModTime time.Time
	Size    int64

	// TTL variant.
	ExpiresAt time.Time
}

// MtimeValidity builds a validity snapshot for a file-backed entry.
func MtimeValidity(path string, modTime time.Time, size int64) Validity {
	return Validity{Kind: ValidityMtime, Path: path, ModTime: modTime, Size: size}
}

// TTLValidity builds a validity window expiring at the given instant.
func TTLValidity(expiresAt time.Time) Validity {
	return Validity{Kind: ValidityTTL, ExpiresAt: expiresAt}
}

// CacheEntry is a cached operation result together with its validity.
// Entries are owned exclusively by the result cache.
type CacheEntry struct {
	Value     string
	CreatedAt time.Time
	Validity  Validity
}
