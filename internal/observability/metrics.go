package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters for the warning service.
type Metrics struct {
	Registrations prometheus.Counter
	Submissions   prometheus.Counter
	Updates       prometheus.Counter
	Queries       *prometheus.CounterVec // labels: kind={all,user,time,location}
	StorageErrors prometheus.Counter
	AuthFailures  prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roadwatch",
			Name:      "registrations_total",
			Help:      "Total successful user registrations.",
		}),
		Submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roadwatch",
			Name:      "submissions_total",
			Help:      "Total warning records submitted.",
		}),
		Updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roadwatch",
			Name:      "updates_total",
			Help:      "Total warning records updated by their reporter.",
		}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadwatch",
			Name:      "queries_total",
			Help:      "Total warning queries served, by query kind.",
		}, []string{"kind"}),
		StorageErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roadwatch",
			Name:      "storage_errors_total",
			Help:      "Total storage-level failures surfaced to callers.",
		}),
		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roadwatch",
			Name:      "auth_failures_total",
			Help:      "Total rejected Basic auth attempts.",
		}),
	}

	prometheus.MustRegister(
		m.Registrations,
		m.Submissions,
		m.Updates,
		m.Queries,
		m.StorageErrors,
		m.AuthFailures,
	)
	return m
}
