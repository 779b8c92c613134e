package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relay/cmd/relay/commands"
	"go.trai.ch/relay/internal/app"
	"go.trai.ch/relay/internal/build"
	"go.trai.ch/relay/internal/core/domain"
)

type mockApp struct {
	runFunc     func(ctx context.Context, opts app.RunOptions) error
	invokeFunc  func(ctx context.Context, name, argsJSON string, timeout time.Duration) (string, error)
	catalogFunc func(ctx context.Context) ([]domain.OperationDescriptor, error)
	statusFunc  func(ctx context.Context) (app.Status, error)
}

func (m *mockApp) Run(ctx context.Context, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Invoke(ctx context.Context, name, argsJSON string, timeout time.Duration) (string, error) {
	if m.invokeFunc != nil {
		return m.invokeFunc(ctx, name, argsJSON, timeout)
	}
	return "", nil
}

func (m *mockApp) Catalog(ctx context.Context) ([]domain.OperationDescriptor, error) {
	if m.catalogFunc != nil {
		return m.catalogFunc(ctx)
	}
	return nil, nil
}

func (m *mockApp) StatusReport(ctx context.Context) (app.Status, error) {
	if m.statusFunc != nil {
		return m.statusFunc(ctx)
	}
	return app.Status{}, nil
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedOpts app.RunOptions
		called := false

		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				capturedOpts = opts
				called = true
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "--no-watch"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.True(t, called)
		assert.True(t, capturedOpts.NoWatch)
	})

	t.Run("returns error on session failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Invoke(t *testing.T) {
	t.Run("passes operation, arguments and timeout", func(t *testing.T) {
		var gotName, gotArgs string
		var gotTimeout time.Duration

		mock := &mockApp{
			invokeFunc: func(_ context.Context, name, argsJSON string, timeout time.Duration) (string, error) {
				gotName = name
				gotArgs = argsJSON
				gotTimeout = timeout
				return "the result", nil
			},
		}

		cli := commands.New(mock)
		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs([]string{"invoke", "read_file", `{"path": "/x"}`, "--timeout", "5s"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "read_file", gotName)
		assert.Equal(t, `{"path": "/x"}`, gotArgs)
		assert.Equal(t, 5*time.Second, gotTimeout)
		assert.Contains(t, buf.String(), "the result")
	})

	t.Run("arguments are optional", func(t *testing.T) {
		var gotArgs string
		mock := &mockApp{
			invokeFunc: func(_ context.Context, _, argsJSON string, _ time.Duration) (string, error) {
				gotArgs = argsJSON
				return "", nil
			},
		}

		cli := commands.New(mock)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"invoke", "list_roots"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Empty(t, gotArgs)
	})

	t.Run("requires an operation", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"invoke"})

		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Catalog(t *testing.T) {
	mock := &mockApp{
		catalogFunc: func(context.Context) ([]domain.OperationDescriptor, error) {
			return []domain.OperationDescriptor{
				{Server: "fs", Name: "read_file", Description: "Read a file"},
				{Server: "web", Name: "browser_navigate", Description: "Open a page"},
			}, nil
		},
	}

	cli := commands.New(mock)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"catalog"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "read_file")
	assert.Contains(t, buf.String(), "browser_navigate")
	assert.Contains(t, buf.String(), "Read a file")
}

func TestCommands_Status(t *testing.T) {
	mock := &mockApp{
		statusFunc: func(context.Context) (app.Status, error) {
			return app.Status{ConfigPath: "/work/relay.json", Servers: 2, Operations: 7}, nil
		},
	}

	cli := commands.New(mock)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"status"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "config: /work/relay.json")
	assert.Contains(t, buf.String(), "servers: 2")
	assert.Contains(t, buf.String(), "operations: 7")
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{})
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), build.Version)
}
