// Package policy implements the operation classifier: a static table
// mapping operation names to caching policies, optionally narrowed by a
// YAML overrides file.
package policy

import (
	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
)

var _ ports.Classifier = (*Classifier)(nil)

// builtin is the seeded classification table.
//
// The asymmetry is deliberate and must never be inverted: every operation
// absent from this table classifies as non-cacheable. The mutating set is
// listed explicitly so an override file can be validated against it.
var builtin = map[string]domain.OperationPolicy{
	// Read-only operations.
	"read_file": {
		Name:         "read_file",
		Cacheable:    true,
		Invalidation: domain.InvalidationFileMtime,
		PathArgument: "path",
	},
	"file_metadata": {
		Name:         "file_metadata",
		Cacheable:    true,
		Invalidation: domain.InvalidationFileMtime,
		PathArgument: "path",
	},
	"list_directory": {
		Name:         "list_directory",
		Cacheable:    true,
		Invalidation: domain.InvalidationTTL,
		TTL:          domain.DefaultTTL,
	},
	"directory_tree": {
		Name:         "directory_tree",
		Cacheable:    true,
		Invalidation: domain.InvalidationTTL,
		TTL:          domain.DefaultTTL,
	},
	"search_files": {
		Name:         "search_files",
		Cacheable:    true,
		Invalidation: domain.InvalidationTTL,
		TTL:          domain.DefaultTTL,
	},
	"list_roots": {
		Name:         "list_roots",
		Cacheable:    true,
		Invalidation: domain.InvalidationTTL,
		TTL:          domain.DefaultTTL,
	},

	// State-mutating operations, explicitly non-cacheable.
	"write_file":       mutating("write_file"),
	"move_file":        mutating("move_file"),
	"create_directory": mutating("create_directory"),
	"shell_execute":    mutating("shell_execute"),
	"browser_navigate": mutating("browser_navigate"),
	"browser_extract":  mutating("browser_extract"),
}

func mutating(name string) domain.OperationPolicy {
	return domain.OperationPolicy{Name: name, Cacheable: false, Invalidation: domain.InvalidationNone}
}

// Classifier resolves operation names against the policy table.
// The table is immutable after construction.
type Classifier struct {
	table map[string]domain.OperationPolicy
}

// NewClassifier builds a classifier from the built-in table.
func NewClassifier() *Classifier {
	table := make(map[string]domain.OperationPolicy, len(builtin))
	for name, p := range builtin {
		table[name] = p
	}
	return &Classifier{table: table}
}

// Classify returns the policy for name. Unknown names are non-cacheable.
func (c *Classifier) Classify(name string) domain.OperationPolicy {
	if p, ok := c.table[name]; ok {
		return p
	}
	return domain.NonCacheable(name)
}
