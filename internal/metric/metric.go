// Package metric holds the prometheus instrumentation for the telemetry
// reader. Collectors work unregistered, so library users who do not scrape
// pay nothing; cmd/monitor exposes them over promhttp when asked.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "simtelem"

// Metrics contains the reader's platform metrics.
type Metrics struct {
	ConnectionState prometheus.Gauge
	ConnectAttempts prometheus.Counter
	Ticks           *prometheus.CounterVec
	ReadErrors      *prometheus.CounterVec
	Transitions     *prometheus.CounterVec
}

// New creates the metric set. Collectors are not registered anywhere yet.
func New() *Metrics {
	return &Metrics{
		ConnectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "state",
			Help:      "Connection state (0=disconnected, 1=connecting, 2=connected)",
		}),
		ConnectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "attempts_total",
			Help:      "Total connect attempts, including retries",
		}),
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "ticks_total",
			Help:      "Successful poll ticks per region",
		}, []string{"region"}),
		ReadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "read_errors_total",
			Help:      "Failed snapshot or decode attempts per region",
		}, []string{"region"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "transitions_total",
			Help:      "Emitted state-transition events per tracked field",
		}, []string{"field"}),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		m.ConnectionState,
		m.ConnectAttempts,
		m.Ticks,
		m.ReadErrors,
		m.Transitions,
	)
}

// NewRegistry returns a fresh registry carrying the reader metrics plus the
// standard Go runtime and process collectors.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	m := New()
	m.Register(reg)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg, m
}
