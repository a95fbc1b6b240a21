// Package telemetry sets up OpenTelemetry for impactd.
//
// New installs an SDK tracer provider and meter provider that export over
// OTLP, using gRPC or HTTP/protobuf depending on Config.Protocol. The
// registry wraps each command in a span named "registry.execute"; the HTTP
// transport records request metrics on a meter from Telemetry.Meter.
// Prometheus counters served on /metrics are separate and do not pass
// through this package.
//
// With telemetry disabled, or on a nil *Telemetry, Tracer and Meter fall
// back to the global providers, which are no-ops unless something else
// installed them. If an exporter cannot be built New still succeeds and
// Fault reports the reason.
//
// Tests use NewTestTelemetry, which records spans and metrics in memory:
//
//	tt := telemetry.NewTestTelemetry()
//	svc := registry.New(store, backend, registry.WithTracer(tt.Tracer("test")))
//	// ...
//	tt.AssertSpanExists(t, "registry.execute")
package telemetry
