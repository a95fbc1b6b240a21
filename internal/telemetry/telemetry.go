package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry holds the SDK providers installed for the process. A zero or
// nil Telemetry hands out the global providers.
type Telemetry struct {
	cfg    *Config
	traces *sdktrace.TracerProvider
	meters *sdkmetric.MeterProvider

	mu      sync.Mutex
	stopped bool
	fault   error
}

// Option customises New.
type Option func(*setup)

type setup struct {
	spanExporter sdktrace.SpanExporter
	metricReader sdkmetric.Reader
}

// WithExporter replaces the OTLP span exporter.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(s *setup) { s.spanExporter = exp }
}

// WithMetricReader replaces the periodic OTLP metric reader.
func WithMetricReader(r sdkmetric.Reader) Option {
	return func(s *setup) { s.metricReader = r }
}

// New installs tracer and meter providers according to cfg. When cfg is
// disabled nothing is installed. A provider whose exporter cannot be built
// is skipped and the failure is reported by Fault; New itself only fails on
// invalid config.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	t := &Telemetry{cfg: cfg}
	if !cfg.Enabled {
		return t, nil
	}

	var s setup
	for _, opt := range opts {
		opt(&s)
	}

	var faults []error
	if tp, err := newTracerProvider(ctx, cfg, s.spanExporter); err != nil {
		faults = append(faults, err)
	} else {
		t.traces = tp
		otel.SetTracerProvider(tp)
	}
	if mp, err := newMeterProvider(ctx, cfg, s.metricReader); err != nil {
		faults = append(faults, err)
	} else {
		t.meters = mp
		otel.SetMeterProvider(mp)
	}
	t.fault = errors.Join(faults...)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return t, nil
}

// Tracer returns a named tracer.
func (t *Telemetry) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if t == nil || t.traces == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return t.traces.Tracer(name, opts...)
}

// Meter returns a named meter.
func (t *Telemetry) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if t == nil || t.meters == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return t.meters.Meter(name, opts...)
}

// Exporting reports whether spans are being exported.
func (t *Telemetry) Exporting() bool {
	if t == nil || t.traces == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped
}

// Fault returns why a provider could not be started, or nil.
func (t *Telemetry) Fault() error {
	if t == nil {
		return nil
	}
	return t.fault
}

// ForceFlush pushes buffered spans and metrics to the exporters.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.each(ctx, "flush",
		func(ctx context.Context) error { return t.traces.ForceFlush(ctx) },
		func(ctx context.Context) error { return t.meters.ForceFlush(ctx) },
	)
}

// Shutdown flushes and stops the providers. Without a deadline on ctx the
// configured shutdown timeout applies. Calling it twice is a no-op.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	t.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.ShutdownTimeout)
		defer cancel()
	}
	return t.each(ctx, "shutdown",
		func(ctx context.Context) error { return t.traces.Shutdown(ctx) },
		func(ctx context.Context) error { return t.meters.Shutdown(ctx) },
	)
}

// each runs the tracer step then the meter step, skipping providers that
// were never installed.
func (t *Telemetry) each(ctx context.Context, verb string, traces, meters func(context.Context) error) error {
	var errs []error
	if t.traces != nil {
		if err := traces(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider %s: %w", verb, err))
		}
	}
	if t.meters != nil {
		if err := meters(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider %s: %w", verb, err))
		}
	}
	return errors.Join(errs...)
}
