package mcp

import (
	"context"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
)

var _ ports.Launcher = (*Launcher)(nil)

// Launcher spawns tool-server subprocesses.
type Launcher struct{}

// NewLauncher creates a new Launcher.
func NewLauncher() *Launcher {
	return &Launcher{}
}

// Launch starts the described server and runs the initialization handshake.
// On handshake failure the process is torn down before the error returns.
func (l *Launcher) Launch(ctx context.Context, desc domain.ServerDescriptor) (ports.Dispatcher, error) {
	client, err := NewClient(desc)
	if err != nil {
		return nil, err
	}

	if err := client.Initialize(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
