package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestTelemetry keeps spans and metrics in memory for assertions. It does
// not touch the global providers.
type TestTelemetry struct {
	*Telemetry
	Recorder *tracetest.SpanRecorder
	Reader   *sdkmetric.ManualReader
}

// NewTestTelemetry returns telemetry wired to a span recorder and a manual
// metric reader.
func NewTestTelemetry() *TestTelemetry {
	rec := tracetest.NewSpanRecorder()
	rd := sdkmetric.NewManualReader()

	cfg := NewDefaultConfig()
	cfg.Enabled = true
	return &TestTelemetry{
		Telemetry: &Telemetry{
			cfg:    cfg,
			traces: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)),
			meters: sdkmetric.NewMeterProvider(sdkmetric.WithReader(rd)),
		},
		Recorder: rec,
		Reader:   rd,
	}
}

// MetricNames collects once and lists every metric name seen.
func (tt *TestTelemetry) MetricNames(tb testing.TB) []string {
	tb.Helper()
	var rm metricdata.ResourceMetrics
	if err := tt.Reader.Collect(context.Background(), &rm); err != nil {
		tb.Fatalf("collect metrics: %v", err)
	}
	names := []string{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			names = append(names, m.Name)
		}
	}
	return names
}

// SpanByName returns the first ended span called name.
func (tt *TestTelemetry) SpanByName(name string) sdktrace.ReadOnlySpan {
	for _, s := range tt.Recorder.Ended() {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// AssertSpanExists fails tb unless a span called name has ended.
func (tt *TestTelemetry) AssertSpanExists(tb testing.TB, name string) {
	tb.Helper()
	if tt.SpanByName(name) != nil {
		return
	}
	var seen []string
	for _, s := range tt.Recorder.Ended() {
		seen = append(seen, s.Name())
	}
	tb.Errorf("no span %q among %v", name, seen)
}

// AssertSpanAttribute fails tb unless span carries key with value want.
// Ints are compared as int64.
func (tt *TestTelemetry) AssertSpanAttribute(tb testing.TB, span, key string, want any) {
	tb.Helper()
	s := tt.SpanByName(span)
	if s == nil {
		tb.Fatalf("no span %q", span)
	}
	for _, kv := range s.Attributes() {
		if kv.Key != attribute.Key(key) {
			continue
		}
		if got := kv.Value.AsInterface(); got != want {
			tb.Errorf("%s[%s] = %v (%T), want %v (%T)", span, key, got, got, want, want)
		}
		return
	}
	tb.Errorf("%s has no attribute %q", span, key)
}
