package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the LTI launch pipeline. Each
// Metrics instance carries its own registry so independent server instances
// never fight over collector registration.
type Metrics struct {
	Registry *prometheus.Registry

	LoginsInitiated   prometheus.Counter
	LaunchesSucceeded prometheus.Counter
	LaunchFailures    *prometheus.CounterVec
	KeyFetchDuration  prometheus.Histogram
}

// New registers and returns the launch metrics collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		LoginsInitiated: factory.NewCounter(prometheus.CounterOpts{
			Name: "blunote_lti_logins_initiated_total",
			Help: "Total number of OIDC login initiations",
		}),
		LaunchesSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "blunote_lti_launches_succeeded_total",
			Help: "Total number of verified LTI launches",
		}),
		LaunchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blunote_lti_launch_failures_total",
			Help: "Total number of rejected LTI launches by failure kind",
		}, []string{"kind"}),
		KeyFetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "blunote_lti_key_fetch_duration_seconds",
			Help:    "Latency of platform key set fetches",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
