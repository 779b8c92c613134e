package ports

import (
	"context"
	"time"

	"go.trai.ch/relay/internal/core/domain"
)

// RegistryCounts reports the size of the active server set.
type RegistryCounts struct {
	Servers    int
	Operations int
}

// Registry aggregates the operations of all connected tool servers and
// routes invocations through their caching executors.
type Registry interface {
	// Initialize discovers the configuration, launches the declared servers
	// and builds one caching executor per discovered operation.
	Initialize(ctx context.Context) error

	// Invoke routes an invocation by operation name. A zero timeout means
	// no deadline. Unknown names fail with domain.ErrUnknownOperation.
	Invoke(ctx context.Context, name, argsJSON string, timeout time.Duration) (string, error)

	// Catalog returns the unified operation catalog, sorted by name.
	Catalog() []domain.OperationDescriptor

	// Counts returns the number of connected servers and registered operations.
	Counts() RegistryCounts

	// ConfigPath returns the configuration file the registry last loaded.
	// Empty until the first Initialize.
	ConfigPath() string

	// Shutdown tears down every connected server. In-flight invocations are
	// left to run to completion or fail naturally.
	Shutdown(ctx context.Context) error
}
