package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for command execution.
//
// Metrics:
//   - impactd_commands_total{command,outcome} - commands handled
//   - impactd_command_duration_seconds{command} - execution time, persistence included
//   - impactd_persist_failures_total - saves that failed after a mutation
//   - impactd_events_failed_total - lifecycle events that could not be published
//   - impactd_projects - live projects in the store
type Metrics struct {
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	PersistFailures prometheus.Counter
	EventFailures   prometheus.Counter
	Projects        prometheus.Gauge
}

// NewMetrics creates metrics registered with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "impactd_commands_total",
				Help: "Total number of chat commands handled",
			},
			[]string{"command", "outcome"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "impactd_command_duration_seconds",
				Help:    "Duration of command execution in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
			},
			[]string{"command"},
		),
		PersistFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "impactd_persist_failures_total",
				Help: "Total number of failed saves after a mutation",
			},
		),
		EventFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "impactd_events_failed_total",
				Help: "Total number of lifecycle events that failed to publish",
			},
		),
		Projects: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "impactd_projects",
				Help: "Number of live projects",
			},
		),
	}
}
