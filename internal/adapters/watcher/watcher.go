package watcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ConfigWatcher = (*Watcher)(nil)

// Watcher implements ports.ConfigWatcher using fsnotify.
//
// The parent directory is watched rather than the file itself: editors
// commonly save via rename-replace, which would otherwise silently detach a
// direct file watch. Events for other files in the directory are filtered
// out.
type Watcher struct {
	logger ports.Logger
	window time.Duration

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	lastHash  uint64
	hasFile   bool
}

// NewWatcher creates a watcher with the default debounce window.
func NewWatcher(logger ports.Logger) *Watcher {
	return &Watcher{logger: logger, window: DefaultDebounceWindow}
}

// WithWindow overrides the debounce window. Used by tests.
func (w *Watcher) WithWindow(window time.Duration) *Watcher {
	w.window = window
	return w
}

// Watch starts monitoring path and calls onChange after each debounced,
// genuine content change. Rewrites that leave the file's bytes unchanged are
// suppressed by comparing content hashes.
func (w *Watcher) Watch(ctx context.Context, path string, onChange func(path string)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return zerr.Wrap(domain.ErrWatchUnavailable, err.Error())
	}

	hash, hashed, err := hashFile(absPath)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrWatchUnavailable, err.Error()), "path", absPath)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(domain.ErrWatchUnavailable, err.Error())
	}
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		_ = fsWatcher.Close()
		return zerr.With(zerr.Wrap(domain.ErrWatchUnavailable, err.Error()), "path", absPath)
	}

	w.mu.Lock()
	w.fsWatcher = fsWatcher
	w.lastHash = hash
	w.hasFile = hashed
	w.debouncer = NewDebouncer(w.window, func() {
		w.checkContent(absPath, onChange)
	})
	w.mu.Unlock()

	go w.processEvents(ctx, absPath)

	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debouncer != nil {
		w.debouncer.Stop()
	}
	if w.fsWatcher == nil {
		return nil
	}
	err := w.fsWatcher.Close()
	w.fsWatcher = nil
	return err
}

func (w *Watcher) processEvents(ctx context.Context, path string) {
	w.mu.Lock()
	fsWatcher := w.fsWatcher
	debouncer := w.debouncer
	w.mu.Unlock()
	if fsWatcher == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if event.Name != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debouncer.Trigger()
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher: filesystem error: " + err.Error())
		}
	}
}

// checkContent runs after the debounce window. The callback fires only when
// the file's bytes genuinely differ from the last observed state.
func (w *Watcher) checkContent(path string, onChange func(path string)) {
	hash, hashed, err := hashFile(path)
	if err != nil {
		w.logger.Warn("config watcher: failed to hash " + path + ": " + err.Error())
		return
	}

	w.mu.Lock()
	changed := hashed != w.hasFile || (hashed && hash != w.lastHash)
	w.lastHash = hash
	w.hasFile = hashed
	w.mu.Unlock()

	if changed {
		onChange(path)
	}
}

// hashFile computes the xxhash of the file's content. A missing file is not
// an error: it reports hashed=false so a later recreation counts as a
// change.
func hashFile(path string) (uint64, bool, error) {
	f, err := os.Open(path) //nolint:gosec // Path is the watched config file
	if os.IsNotExist(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, false, err
	}
	return h.Sum64(), true, nil
}
