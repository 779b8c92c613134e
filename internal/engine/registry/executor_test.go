package registry_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relay/internal/adapters/cache"
	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/engine/registry"
)

func mtimePolicy(name string) domain.OperationPolicy {
	return domain.OperationPolicy{
		Name:         name,
		Cacheable:    true,
		Invalidation: domain.InvalidationFileMtime,
		PathArgument: "path",
	}
}

func ttlPolicy(name string, ttl time.Duration) domain.OperationPolicy {
	return domain.OperationPolicy{
		Name:         name,
		Cacheable:    true,
		Invalidation: domain.InvalidationTTL,
		TTL:          ttl,
	}
}

func TestExecutor_FileBackedResultsAreCachedUntilTheFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o600))

	dispatcher := &fakeDispatcher{
		dispatch: func(context.Context, string, map[string]any) (string, error) {
			data, err := os.ReadFile(path)
			return string(data), err
		},
	}
	e := registry.NewExecutor(opDesc("fs", "read_file"), mtimePolicy("read_file"), dispatcher, cache.NewMemory())

	args := map[string]any{"path": path}

	value, hit, err := e.Invoke(context.Background(), args)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "v1", value)

	value, hit, err = e.Invoke(context.Background(), args)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v1", value)
	assert.Equal(t, int64(1), dispatcher.calls.Load())

	// Changing the file makes the entry stale; the next invocation goes
	// back to the server and observes the new content.
	require.NoError(t, os.WriteFile(path, []byte("version 2"), 0o600))

	value, hit, err = e.Invoke(context.Background(), args)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "version 2", value)
	assert.Equal(t, int64(2), dispatcher.calls.Load())
}

func TestExecutor_NonCacheableAlwaysDispatches(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	c := cache.NewMemory()
	e := registry.NewExecutor(opDesc("fs", "write_file"), domain.NonCacheable("write_file"), dispatcher, c)

	for range 3 {
		_, hit, err := e.Invoke(context.Background(), map[string]any{"path": "/x", "content": "y"})
		require.NoError(t, err)
		assert.False(t, hit)
	}

	assert.Equal(t, int64(3), dispatcher.calls.Load())
	assert.Equal(t, 0, c.Stats().Size)
}

func TestExecutor_ErrorsAreNeverCached(t *testing.T) {
	failing := errors.New("tool exploded")
	shouldFail := true
	dispatcher := &fakeDispatcher{
		dispatch: func(context.Context, string, map[string]any) (string, error) {
			if shouldFail {
				return "", failing
			}
			return "recovered", nil
		},
	}
	c := cache.NewMemory()
	e := registry.NewExecutor(opDesc("fs", "list_directory"), ttlPolicy("list_directory", time.Minute), dispatcher, c)

	args := map[string]any{"path": "/x"}

	_, _, err := e.Invoke(context.Background(), args)
	require.ErrorIs(t, err, failing)
	assert.Equal(t, 0, c.Stats().Size)

	shouldFail = false
	value, hit, err := e.Invoke(context.Background(), args)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "recovered", value)

	// The recovery is cached.
	_, hit, err = e.Invoke(context.Background(), args)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestExecutor_TTLResultIsCached(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	e := registry.NewExecutor(opDesc("fs", "list_directory"), ttlPolicy("list_directory", 0), dispatcher, cache.NewMemory())

	// Zero TTL in the policy falls back to the default window.
	_, hit, err := e.Invoke(context.Background(), map[string]any{"path": "/x"})
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = e.Invoke(context.Background(), map[string]any{"path": "/x"})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(1), dispatcher.calls.Load())
}

func TestExecutor_MissingPathArgumentSkipsCaching(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	c := cache.NewMemory()
	e := registry.NewExecutor(opDesc("fs", "read_file"), mtimePolicy("read_file"), dispatcher, c)

	for range 2 {
		_, hit, err := e.Invoke(context.Background(), map[string]any{"offset": 10})
		require.NoError(t, err)
		assert.False(t, hit)
	}

	assert.Equal(t, int64(2), dispatcher.calls.Load())
	assert.Equal(t, 0, c.Stats().Size)
}

func TestExecutor_UnstatablePathSkipsCaching(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	c := cache.NewMemory()
	e := registry.NewExecutor(opDesc("fs", "read_file"), mtimePolicy("read_file"), dispatcher, c)

	args := map[string]any{"path": filepath.Join(t.TempDir(), "gone.txt")}

	_, hit, err := e.Invoke(context.Background(), args)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 0, c.Stats().Size)
}

func TestExecutor_DirectoryPathSkipsCaching(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	c := cache.NewMemory()
	e := registry.NewExecutor(opDesc("fs", "read_file"), mtimePolicy("read_file"), dispatcher, c)

	_, _, err := e.Invoke(context.Background(), map[string]any{"path": t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Stats().Size)
}
