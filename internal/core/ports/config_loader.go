package ports

import "go.trai.ch/relay/internal/core/domain"

// ConfigLoader discovers and parses the tool-server configuration document.
type ConfigLoader interface {
	// Discover walks up from cwd and returns the path of the nearest
	// configuration file.
	Discover(cwd string) (string, error)

	// Load parses the configuration document at path and returns the
	// declared server descriptors sorted by id.
	Load(path string) ([]domain.ServerDescriptor, error)
}
