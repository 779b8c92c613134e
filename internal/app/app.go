// Package app implements the application layer for relay.
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.trai.ch/relay/internal/adapters/telemetry"
	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/relay/internal/engine/reload"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	registry    ports.Registry
	coordinator *reload.Coordinator
	watcher     ports.ConfigWatcher
	cache       ports.ResultCache
	logger      ports.Logger

	input  io.Reader
	output io.Writer

	watching bool
}

// New creates a new App instance.
func New(
	registry ports.Registry,
	coordinator *reload.Coordinator,
	watcher ports.ConfigWatcher,
	cache ports.ResultCache,
	logger ports.Logger,
) *App {
	return &App{
		registry:    registry,
		coordinator: coordinator,
		watcher:     watcher,
		cache:       cache,
		logger:      logger,
		input:       os.Stdin,
		output:      os.Stdout,
	}
}

// WithStreams overrides the console input and output. Used by tests.
func (a *App) WithStreams(in io.Reader, out io.Writer) *App {
	a.input = in
	a.output = out
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// NoWatch disables config watching; reloads stay available via the
	// console command.
	NoWatch bool
}

// Status is a structured snapshot of watcher and registry state.
type Status struct {
	ConfigPath string
	Servers    int
	Operations int
	Watching   bool
	Reloading  bool
	Cache      ports.CacheStats
}

// Run starts a relay session: it initializes the registry, watches the
// configuration for changes and serves console commands until the context
// is cancelled or the input stream ends.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	provider := telemetry.Setup()
	defer func() { _ = provider.Shutdown(context.WithoutCancel(ctx)) }()

	if err := a.registry.Initialize(ctx); err != nil {
		return zerr.Wrap(err, "failed to initialize tool registry")
	}
	defer func() {
		if err := a.registry.Shutdown(context.WithoutCancel(ctx)); err != nil {
			a.logger.Error(zerr.Wrap(err, "shutdown reported errors"))
		}
	}()

	counts := a.registry.Counts()
	a.logger.Info(fmt.Sprintf("connected %d servers exposing %d operations", counts.Servers, counts.Operations))

	events, cancelEvents := a.coordinator.Events().Subscribe()
	defer cancelEvents()
	go a.logEvents(events)

	if !opts.NoWatch {
		a.startWatcher(ctx)
		defer func() { _ = a.watcher.Stop() }()
	}

	return a.console(ctx)
}

// startWatcher begins config watching. Watch failure is non-fatal: the
// session degrades to manual reloads only.
func (a *App) startWatcher(ctx context.Context) {
	path := a.registry.ConfigPath()
	err := a.watcher.Watch(ctx, path, func(string) {
		result, err := a.coordinator.Reload(ctx, domain.ReasonConfigChange)
		if err != nil {
			// Reject-while-busy: drop this notification, the next genuine
			// change will fire again.
			a.logger.Warn("config changed during an active reload, skipping")
			return
		}
		if !result.Success {
			a.logger.Warn("config change reload failed; registry is empty until the next successful reload")
		}
	})
	if err != nil {
		a.logger.Warn("config watching unavailable, reload via the 'reload' command: " + err.Error())
		return
	}
	a.watching = true
	a.logger.Info("watching " + path)
}

func (a *App) logEvents(events <-chan domain.ReloadEvent) {
	for event := range events {
		switch event.Type {
		case domain.ReloadStart:
			a.logger.Info(fmt.Sprintf("reload started (%s)", event.Reason))
		case domain.ReloadComplete:
			a.logger.Info(fmt.Sprintf("reload complete (%s): %d -> %d operations in %s",
				event.Reason, event.BeforeCount, event.AfterCount, event.Duration.Round(time.Millisecond)))
		case domain.ReloadError:
			a.logger.Warn(fmt.Sprintf("reload failed (%s): %s", event.Reason, event.Err))
		}
	}
}

// console reads commands from the input stream until EOF or cancellation.
func (a *App) console(ctx context.Context) error {
	scanner := bufio.NewScanner(a.input)
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := a.handleCommand(ctx, strings.TrimSpace(line))
			if err != nil {
				a.logger.Error(err)
			}
			if quit {
				return nil
			}
		}
	}
}

// handleCommand executes one console command. It returns true when the
// session should end.
func (a *App) handleCommand(ctx context.Context, line string) (bool, error) {
	if line == "" {
		return false, nil
	}

	verb, rest, _ := strings.Cut(line, " ")
	switch verb {
	case "quit", "exit":
		return true, nil

	case "reload":
		result, err := a.coordinator.Reload(ctx, domain.ReasonUserCommand)
		if err != nil {
			return false, err
		}
		a.printReloadResult(result)
		return false, nil

	case "status":
		a.printStatus()
		return false, nil

	case "cache":
		return false, a.handleCacheCommand(rest)

	case "invoke":
		name, argsJSON, _ := strings.Cut(strings.TrimSpace(rest), " ")
		if name == "" {
			fmt.Fprintln(a.output, "usage: invoke <operation> [argument JSON]")
			return false, nil
		}
		value, err := a.registry.Invoke(ctx, name, strings.TrimSpace(argsJSON), 0)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(a.output, value)
		return false, nil

	default:
		fmt.Fprintln(a.output, "commands: invoke, reload, status, cache stats, cache clear, quit")
		return false, nil
	}
}

func (a *App) handleCacheCommand(sub string) error {
	switch strings.TrimSpace(sub) {
	case "stats":
		stats := a.cache.Stats()
		fmt.Fprintf(a.output, "hits=%d misses=%d invalidations=%d size=%d\n",
			stats.Hits, stats.Misses, stats.Invalidations, stats.Size)
	case "clear":
		a.cache.Clear()
		fmt.Fprintln(a.output, "cache cleared")
	default:
		fmt.Fprintln(a.output, "usage: cache stats | cache clear")
	}
	return nil
}

func (a *App) printReloadResult(result reload.Result) {
	if result.Success {
		fmt.Fprintf(a.output, "reloaded: %d -> %d operations in %s\n",
			result.BeforeCount, result.AfterCount, result.Duration.Round(time.Millisecond))
		return
	}
	fmt.Fprintf(a.output, "reload failed: %v (operations: %d -> %d)\n",
		result.Err, result.BeforeCount, result.AfterCount)
}

func (a *App) printStatus() {
	status := a.Status()
	fmt.Fprintf(a.output, "config: %s\nservers: %d\noperations: %d\nwatching: %t\nreloading: %t\n",
		status.ConfigPath, status.Servers, status.Operations, status.Watching, status.Reloading)
	fmt.Fprintf(a.output, "cache: hits=%d misses=%d invalidations=%d size=%d\n",
		status.Cache.Hits, status.Cache.Misses, status.Cache.Invalidations, status.Cache.Size)
}

// Status returns a structured snapshot of watcher and registry state.
func (a *App) Status() Status {
	counts := a.registry.Counts()
	return Status{
		ConfigPath: a.registry.ConfigPath(),
		Servers:    counts.Servers,
		Operations: counts.Operations,
		Watching:   a.watching,
		Reloading:  a.coordinator.Busy(),
		Cache:      a.cache.Stats(),
	}
}

// Invoke performs a one-shot invocation: the registry is brought up, the
// operation invoked and everything shut down again.
func (a *App) Invoke(ctx context.Context, name, argsJSON string, timeout time.Duration) (string, error) {
	if err := a.registry.Initialize(ctx); err != nil {
		return "", zerr.Wrap(err, "failed to initialize tool registry")
	}
	defer func() { _ = a.registry.Shutdown(context.WithoutCancel(ctx)) }()

	return a.registry.Invoke(ctx, name, argsJSON, timeout)
}

// StatusReport performs a one-shot status query against a freshly
// initialized registry.
func (a *App) StatusReport(ctx context.Context) (Status, error) {
	if err := a.registry.Initialize(ctx); err != nil {
		return Status{}, zerr.Wrap(err, "failed to initialize tool registry")
	}
	defer func() { _ = a.registry.Shutdown(context.WithoutCancel(ctx)) }()

	return a.Status(), nil
}

// Catalog performs a one-shot catalog query.
func (a *App) Catalog(ctx context.Context) ([]domain.OperationDescriptor, error) {
	if err := a.registry.Initialize(ctx); err != nil {
		return nil, zerr.Wrap(err, "failed to initialize tool registry")
	}
	defer func() { _ = a.registry.Shutdown(context.WithoutCancel(ctx)) }()

	return a.registry.Catalog(), nil
}
