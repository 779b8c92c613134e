package app_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relay/internal/adapters/cache"
	"go.trai.ch/relay/internal/app"
	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/relay/internal/engine/reload"
)

type noopLogger struct{}

func (noopLogger) Info(string) {}
func (noopLogger) Warn(string) {}
func (noopLogger) Error(error) {}

type fakeRegistry struct {
	mu         sync.Mutex
	operations map[string]string
	inits      int
}

func newFakeRegistry(ops map[string]string) *fakeRegistry {
	return &fakeRegistry{operations: ops}
}

func (r *fakeRegistry) Initialize(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inits++
	return nil
}

func (r *fakeRegistry) Invoke(_ context.Context, name, _ string, _ time.Duration) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.operations[name]
	if !ok {
		return "", domain.ErrUnknownOperation
	}
	return value, nil
}

func (r *fakeRegistry) Catalog() []domain.OperationDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	catalog := make([]domain.OperationDescriptor, 0, len(r.operations))
	for name := range r.operations {
		catalog = append(catalog, domain.OperationDescriptor{Server: "fake", Name: name})
	}
	return catalog
}

func (r *fakeRegistry) Counts() ports.RegistryCounts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ports.RegistryCounts{Servers: 1, Operations: len(r.operations)}
}

func (r *fakeRegistry) ConfigPath() string { return "relay.json" }

func (r *fakeRegistry) Shutdown(context.Context) error { return nil }

func (r *fakeRegistry) initCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inits
}

type fakeWatcher struct {
	mu       sync.Mutex
	onChange func(string)
}

func (w *fakeWatcher) Watch(_ context.Context, _ string, onChange func(string)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = onChange
	return nil
}

func (w *fakeWatcher) Stop() error { return nil }

func (w *fakeWatcher) change(path string) bool {
	w.mu.Lock()
	fn := w.onChange
	w.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(path)
	return true
}

func newTestApp(reg ports.Registry, w ports.ConfigWatcher) (*app.App, *bytes.Buffer, io.WriteCloser) {
	coordinator := reload.NewCoordinator(reg, reload.NewStream(), noopLogger{})
	stdinR, stdinW := io.Pipe()
	var out bytes.Buffer
	a := app.New(reg, coordinator, w, cache.NewMemory(), noopLogger{}).WithStreams(stdinR, &out)
	return a, &out, stdinW
}

func TestApp_SessionConsoleCommands(t *testing.T) {
	reg := newFakeRegistry(map[string]string{"read_file": "file content"})
	a, out, stdin := newTestApp(reg, &fakeWatcher{})

	done := make(chan error, 1)
	go func() {
		done <- a.Run(context.Background(), app.RunOptions{NoWatch: true})
	}()

	_, err := io.WriteString(stdin, "status\ninvoke read_file {\"path\": \"/x\"}\ncache stats\ncache clear\nreload\nquit\n")
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end on quit")
	}

	output := out.String()
	assert.Contains(t, output, "config: relay.json")
	assert.Contains(t, output, "operations: 1")
	assert.Contains(t, output, "file content")
	assert.Contains(t, output, "hits=0 misses=0")
	assert.Contains(t, output, "cache cleared")
	assert.Contains(t, output, "reloaded: 1 -> 1 operations")
}

func TestApp_SessionEndsOnEOF(t *testing.T) {
	reg := newFakeRegistry(nil)
	a, _, stdin := newTestApp(reg, &fakeWatcher{})

	done := make(chan error, 1)
	go func() {
		done <- a.Run(context.Background(), app.RunOptions{NoWatch: true})
	}()

	require.NoError(t, stdin.Close())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end on EOF")
	}
}

func TestApp_ConfigChangeTriggersReload(t *testing.T) {
	reg := newFakeRegistry(map[string]string{"read_file": "x"})
	w := &fakeWatcher{}
	a, _, stdin := newTestApp(reg, w)

	done := make(chan error, 1)
	go func() {
		done <- a.Run(context.Background(), app.RunOptions{})
	}()
	defer func() {
		_ = stdin.Close()
		<-done
	}()

	// Wait for the watcher to be wired, then simulate a debounced change.
	require.Eventually(t, func() bool {
		return w.change("relay.json")
	}, 5*time.Second, 10*time.Millisecond)

	// Initial startup plus the reload triggered by the change.
	require.Eventually(t, func() bool {
		return reg.initCount() >= 2
	}, 5*time.Second, 10*time.Millisecond)
}

func TestApp_Status(t *testing.T) {
	reg := newFakeRegistry(map[string]string{"read_file": "x", "list_directory": "y"})
	a, _, _ := newTestApp(reg, &fakeWatcher{})

	status := a.Status()
	assert.Equal(t, "relay.json", status.ConfigPath)
	assert.Equal(t, 1, status.Servers)
	assert.Equal(t, 2, status.Operations)
	assert.False(t, status.Reloading)
}

func TestApp_OneShotInvoke(t *testing.T) {
	reg := newFakeRegistry(map[string]string{"read_file": "one-shot value"})
	a, _, _ := newTestApp(reg, &fakeWatcher{})

	value, err := a.Invoke(context.Background(), "read_file", `{"path": "/x"}`, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "one-shot value", value)

	_, err = a.Invoke(context.Background(), "missing", "", time.Second)
	require.ErrorIs(t, err, domain.ErrUnknownOperation)
}

func TestApp_OneShotCatalog(t *testing.T) {
	reg := newFakeRegistry(map[string]string{"read_file": "x"})
	a, _, _ := newTestApp(reg, &fakeWatcher{})

	catalog, err := a.Catalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "read_file", catalog[0].Name)
}

func TestApp_UnknownConsoleCommandPrintsHelp(t *testing.T) {
	reg := newFakeRegistry(nil)
	a, out, stdin := newTestApp(reg, &fakeWatcher{})

	done := make(chan error, 1)
	go func() {
		done <- a.Run(context.Background(), app.RunOptions{NoWatch: true})
	}()

	_, err := io.WriteString(stdin, "frobnicate\nquit\n")
	require.NoError(t, err)
	require.NoError(t, <-done)

	assert.True(t, strings.Contains(out.String(), "commands:"))
}
