package domain

import "time"

// InvalidationKind selects the invalidation strategy for a cacheable operation.
type InvalidationKind uint8

const (
	// InvalidationNone marks an operation whose results are never cached.
	InvalidationNone InvalidationKind = iota
	// InvalidationFileMtime invalidates when the referenced file's
	// modification time or size changes.
	InvalidationFileMtime
	// InvalidationTTL invalidates after a fixed time window.
	InvalidationTTL
)

// DefaultTTL is the expiry window for cacheable operations that are not
// backed by a single file.
const DefaultTTL = 5 * time.Minute

// MaxTTL caps TTLs supplied by policy overrides.
const MaxTTL = 1 * time.Hour

// OperationPolicy is the classification of a single operation name.
// Policies are immutable once the classifier is built.
type OperationPolicy struct {
	Name         string
	Cacheable    bool
	TTL          time.Duration
	Invalidation InvalidationKind

	// PathArgument names the argument that holds the backing file path for
	// InvalidationFileMtime operations.
	PathArgument string
}

// NonCacheable is the policy applied to every operation name absent from the
// classification table. Unknown operations are assumed to have side effects.
func NonCacheable(name string) OperationPolicy {
	return OperationPolicy{Name: name, Cacheable: false, Invalidation: InvalidationNone}
}
