// Package registry aggregates the operations of all connected tool servers
// and routes invocations through their caching executors.
package registry

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Registry = (*Registry)(nil)

// Registry is the concrete ports.Registry implementation.
//
// The executor map is replaced wholesale on Initialize and cleared on
// Shutdown; readers always observe either the previous or the next complete
// set, never a partial one.
type Registry struct {
	loader     ports.ConfigLoader
	launcher   ports.Launcher
	classifier ports.Classifier
	cache      ports.ResultCache
	logger     ports.Logger
	cwd        string
	tracer     trace.Tracer

	mu          sync.RWMutex
	executors   map[string]*Executor
	catalog     []domain.OperationDescriptor
	dispatchers []ports.Dispatcher
	configPath  string
}

// NewRegistry creates a registry rooted at cwd.
func NewRegistry(
	loader ports.ConfigLoader,
	launcher ports.Launcher,
	classifier ports.Classifier,
	cache ports.ResultCache,
	logger ports.Logger,
	cwd string,
) *Registry {
	return &Registry{
		loader:     loader,
		launcher:   launcher,
		classifier: classifier,
		cache:      cache,
		logger:     logger,
		cwd:        cwd,
		tracer:     otel.Tracer("relay.registry"),
		executors:  map[string]*Executor{},
	}
}

// Initialize discovers the configuration, launches every declared server in
// parallel and builds one executor per discovered operation. On any launch
// failure the servers that did start are torn down and the registry stays
// empty.
func (r *Registry) Initialize(ctx context.Context) error {
	configPath, err := r.loader.Discover(r.cwd)
	if err != nil {
		return err
	}

	descriptors, err := r.loader.Load(configPath)
	if err != nil {
		return err
	}

	overrides := filepath.Join(filepath.Dir(configPath), domain.PolicyOverridesFileName)
	if err := r.classifier.ApplyOverrides(overrides); err != nil {
		return err
	}

	dispatchers := make([]ports.Dispatcher, len(descriptors))
	g, launchCtx := errgroup.WithContext(ctx)
	for i, desc := range descriptors {
		g.Go(func() error {
			d, err := r.launcher.Launch(launchCtx, desc)
			if err != nil {
				return zerr.With(err, "server", desc.ID)
			}
			dispatchers[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, d := range dispatchers {
			if d != nil {
				_ = d.Close()
			}
		}
		return err
	}

	// Registration order follows the sorted server order from the loader,
	// so collision resolution is deterministic.
	executors := make(map[string]*Executor)
	var catalog []domain.OperationDescriptor
	for i, desc := range descriptors {
		for _, op := range dispatchers[i].Operations() {
			if existing, ok := executors[op.Name]; ok {
				// First registration wins.
				r.logger.Warn("operation " + op.Name + " from server " + desc.ID +
					" shadowed by server " + existing.descriptor.Server)
				continue
			}
			executors[op.Name] = NewExecutor(op, r.classifier.Classify(op.Name), dispatchers[i], r.cache)
			catalog = append(catalog, op)
		}
	}
	sort.Slice(catalog, func(i, j int) bool { return catalog[i].Name < catalog[j].Name })

	r.mu.Lock()
	r.executors = executors
	r.catalog = catalog
	r.dispatchers = dispatchers
	r.configPath = configPath
	r.mu.Unlock()

	return nil
}

// Invoke routes an invocation by operation name. A zero timeout means no
// deadline; on timeout the call fails with domain.ErrInvokeTimeout and
// nothing is cached.
func (r *Registry) Invoke(ctx context.Context, name, argsJSON string, timeout time.Duration) (string, error) {
	r.mu.RLock()
	executor, ok := r.executors[name]
	r.mu.RUnlock()
	if !ok {
		return "", zerr.With(domain.ErrUnknownOperation, "operation", name)
	}

	args, err := domain.ParseArguments(argsJSON)
	if err != nil {
		return "", err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ctx, span := r.tracer.Start(ctx, "relay.invoke",
		trace.WithAttributes(attribute.String("relay.operation", name)))
	defer span.End()

	value, hit, err := executor.Invoke(ctx, args)
	span.SetAttributes(attribute.Bool("relay.cache.hit", hit))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", zerr.With(domain.ErrInvokeTimeout, "operation", name)
		}
		return "", err
	}

	return value, nil
}

// Catalog returns the unified operation catalog, sorted by name.
func (r *Registry) Catalog() []domain.OperationDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.OperationDescriptor(nil), r.catalog...)
}

// Counts returns the number of connected servers and registered operations.
func (r *Registry) Counts() ports.RegistryCounts {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ports.RegistryCounts{
		Servers:    len(r.dispatchers),
		Operations: len(r.executors),
	}
}

// ConfigPath returns the configuration file the registry last loaded.
func (r *Registry) ConfigPath() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.configPath
}

// Shutdown tears down every connected server and empties the operation set.
// In-flight invocations keep their executor and dispatcher references and
// run to completion or fail naturally; they are never force-cancelled.
func (r *Registry) Shutdown(_ context.Context) error {
	r.mu.Lock()
	dispatchers := r.dispatchers
	r.executors = map[string]*Executor{}
	r.catalog = nil
	r.dispatchers = nil
	r.mu.Unlock()

	var errs []error
	for _, d := range dispatchers {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
