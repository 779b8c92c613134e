package ports

import "go.trai.ch/relay/internal/core/domain"

// Classifier maps operation names to caching policies.
//
// The table is default-deny: any name absent from it classifies as
// non-cacheable. Silently caching a mutating call is a correctness bug;
// refusing to cache a safe call only costs performance.
type Classifier interface {
	// Classify returns the policy for the given operation name.
	Classify(name string) domain.OperationPolicy

	// ApplyOverrides merges the overrides document at path into the table.
	// A missing file is not an error. Overrides can tune TTLs and opt
	// additional read-only operations into caching, but can never mark a
	// built-in mutating operation cacheable.
	ApplyOverrides(path string) error
}
