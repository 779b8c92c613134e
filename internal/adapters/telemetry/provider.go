// Package telemetry configures the OpenTelemetry SDK for relay.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Provider owns the process-wide tracer provider.
//
// No exporter is wired by default: spans exist so an embedding host can
// attach its own processor, and so span attributes (operation name, cache
// hit, reload counts) are available when one is.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Setup installs a tracer provider as the OTel global and returns it.
func Setup(processors ...sdktrace.SpanProcessor) *Provider {
	opts := make([]sdktrace.TracerProviderOption, 0, len(processors))
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return &Provider{tp: tp}
}

// Shutdown flushes and stops the tracer provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.tp.Shutdown(ctx)
}
