package ports

import "context"

// ConfigWatcher monitors the configuration file for genuine content changes.
//
// Implementations debounce bursts of filesystem events and suppress rewrites
// that leave the file's bytes unchanged.
type ConfigWatcher interface {
	// Watch starts monitoring path and calls onChange after each debounced,
	// genuine content change. It returns domain.ErrWatchUnavailable (wrapped)
	// if the platform cannot watch the path.
	Watch(ctx context.Context, path string, onChange func(path string)) error

	// Stop stops the watcher and releases its resources.
	Stop() error
}
