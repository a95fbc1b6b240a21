package http

import (
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/fyrsmithlabs/impactd/internal/http"

// requestMetrics are the per-request OpenTelemetry instruments.
type requestMetrics struct {
	count    metric.Int64Counter
	latency  metric.Float64Histogram
	size     metric.Int64Histogram
	inFlight metric.Int64UpDownCounter
}

// newRequestMetrics creates the instruments on meter (the global meter when
// nil). On error the returned metrics are still usable; failed instruments
// are no-ops.
func newRequestMetrics(meter metric.Meter) (*requestMetrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	fallback := noop.NewMeterProvider().Meter(meterName)

	var errs []error
	m := &requestMetrics{}

	var err error
	if m.count, err = meter.Int64Counter("impactd.http.requests_total",
		metric.WithDescription("HTTP requests by method, route and status."),
		metric.WithUnit("{request}"),
	); err != nil {
		errs = append(errs, err)
		m.count, _ = fallback.Int64Counter("impactd.http.requests_total")
	}
	if m.latency, err = meter.Float64Histogram("impactd.http.request_duration_seconds",
		metric.WithDescription("HTTP request latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5),
	); err != nil {
		errs = append(errs, err)
		m.latency, _ = fallback.Float64Histogram("impactd.http.request_duration_seconds")
	}
	if m.size, err = meter.Int64Histogram("impactd.http.response_size_bytes",
		metric.WithDescription("HTTP response body size."),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(64, 256, 1024, 4096, 16384, 65536),
	); err != nil {
		errs = append(errs, err)
		m.size, _ = fallback.Int64Histogram("impactd.http.response_size_bytes")
	}
	if m.inFlight, err = meter.Int64UpDownCounter("impactd.http.active_requests",
		metric.WithDescription("HTTP requests currently being served."),
		metric.WithUnit("{request}"),
	); err != nil {
		errs = append(errs, err)
		m.inFlight, _ = fallback.Int64UpDownCounter("impactd.http.active_requests")
	}

	return m, errors.Join(errs...)
}

// middleware records one data point per request, keyed by route pattern.
func (m *requestMetrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		began := time.Now()

		m.inFlight.Add(ctx, 1)
		defer m.inFlight.Add(ctx, -1)

		err := next(c)

		resp := c.Response()
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request().Method),
			attribute.String("endpoint", routeLabel(c.Path())),
			attribute.Int("status", resp.Status),
		)
		m.count.Add(ctx, 1, attrs)
		m.latency.Record(ctx, time.Since(began).Seconds(), attrs)
		m.size.Record(ctx, resp.Size, attrs)
		return err
	}
}

// routeLabel keeps the endpoint label bounded: empty becomes "/" and purely
// numeric segments become ":id".
func routeLabel(path string) string {
	if path == "" {
		return "/"
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p != "" && strings.Trim(p, "0123456789") == "" {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
