package ports

import (
	"context"

	"go.trai.ch/relay/internal/core/domain"
)

// Dispatcher is a connected tool server.
type Dispatcher interface {
	// Operations returns the operations discovered on this server.
	Operations() []domain.OperationDescriptor

	// Dispatch invokes a named operation and returns its text result.
	Dispatch(ctx context.Context, name string, args map[string]any) (string, error)

	// Close shuts the server connection down and releases its process.
	Close() error
}

// Launcher spawns tool servers from their descriptors.
type Launcher interface {
	// Launch starts the described server, performs the initialization
	// handshake and discovers its operations.
	Launch(ctx context.Context, desc domain.ServerDescriptor) (Dispatcher, error)
}
