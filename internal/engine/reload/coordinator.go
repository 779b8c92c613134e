package reload

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/zerr"
)

// Result is the outcome of one reload.
type Result struct {
	Success     bool
	Reason      string
	BeforeCount int
	AfterCount  int
	Duration    time.Duration

	// Err holds the rebuild failure when Success is false.
	Err error
}

// Coordinator serializes reloads of the tool registry and publishes
// lifecycle events.
//
// Overlap policy: reject-while-busy. A reload requested while another is in
// flight fails fast with domain.ErrReloadInProgress instead of queueing;
// the next genuine configuration change will trigger a fresh one.
type Coordinator struct {
	registry ports.Registry
	stream   ports.EventStream
	logger   ports.Logger
	tracer   trace.Tracer

	mu   sync.Mutex
	busy bool
}

// NewCoordinator creates a coordinator for the given registry.
func NewCoordinator(registry ports.Registry, stream ports.EventStream, logger ports.Logger) *Coordinator {
	return &Coordinator{
		registry: registry,
		stream:   stream,
		logger:   logger,
		tracer:   otel.Tracer("relay.reload"),
	}
}

// Events exposes the lifecycle event stream for subscribers.
func (c *Coordinator) Events() ports.EventStream {
	return c.stream
}

// Reload tears the current registry down and rebuilds it from the (possibly
// changed) configuration.
//
// A rebuild failure is caught at this boundary: the coordinator publishes a
// ReloadError event and returns a failure Result with a nil error, so one
// bad reload can never crash the host. The only error return is
// domain.ErrReloadInProgress. After a failed reload the registry is empty
// until the next successful one. In-flight invocations that began before
// the shutdown run to completion or fail naturally.
func (c *Coordinator) Reload(ctx context.Context, reason string) (Result, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Result{}, zerr.With(domain.ErrReloadInProgress, "reason", reason)
	}
	c.busy = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	ctx, span := c.tracer.Start(ctx, "relay.reload",
		trace.WithAttributes(attribute.String("relay.reload.reason", reason)))
	defer span.End()

	before := c.registry.Counts()
	started := time.Now()

	c.stream.Publish(domain.ReloadEvent{
		Type:        domain.ReloadStart,
		Reason:      reason,
		Timestamp:   started,
		BeforeCount: before.Operations,
	})

	if err := c.registry.Shutdown(ctx); err != nil {
		// Teardown problems are logged but do not abort the rebuild.
		c.logger.Error(zerr.Wrap(err, "shutdown during reload reported errors"))
	}

	if err := c.registry.Initialize(ctx); err != nil {
		failure := zerr.Wrap(err, domain.ErrReloadFailed.Error())
		duration := time.Since(started)
		c.stream.Publish(domain.ReloadEvent{
			Type:        domain.ReloadError,
			Reason:      reason,
			Timestamp:   time.Now(),
			BeforeCount: before.Operations,
			AfterCount:  0,
			Duration:    duration,
			Err:         failure.Error(),
		})
		c.logger.Error(failure)
		return Result{
			Success:     false,
			Reason:      reason,
			BeforeCount: before.Operations,
			AfterCount:  0,
			Duration:    duration,
			Err:         failure,
		}, nil
	}

	after := c.registry.Counts()
	duration := time.Since(started)
	span.SetAttributes(
		attribute.Int("relay.reload.before", before.Operations),
		attribute.Int("relay.reload.after", after.Operations),
	)

	c.stream.Publish(domain.ReloadEvent{
		Type:        domain.ReloadComplete,
		Reason:      reason,
		Timestamp:   time.Now(),
		BeforeCount: before.Operations,
		AfterCount:  after.Operations,
		Duration:    duration,
	})

	return Result{
		Success:     true,
		Reason:      reason,
		BeforeCount: before.Operations,
		AfterCount:  after.Operations,
		Duration:    duration,
	}, nil
}

// Busy reports whether a reload is currently in flight.
func (c *Coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}
