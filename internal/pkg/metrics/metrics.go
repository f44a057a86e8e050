// Package metrics exposes the administrative surface's operational
// counters via prometheus/client_golang, grounded on grimm-is-glacic's
// internal/metrics package and served the same way that repo's API server
// does: a single promhttp.Handler mounted at /metrics.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every metric the core exports.
type Registry struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ExpirySweepBlocked prometheus.Counter
	ExpirySweepWarned  prometheus.Counter
}

var (
	once     sync.Once
	registry *Registry
)

// Get returns the global metrics registry, creating it on first use.
func Get() *Registry {
	once.Do(func() { registry = newRegistry() })
	return registry
}

func newRegistry() *Registry {
	r := &Registry{}

	r.HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vpncore",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total administrative HTTP requests handled, by route and status code.",
	}, []string{"method", "path", "status"})

	r.HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vpncore",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Administrative HTTP request latency, by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	r.ExpirySweepBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vpncore",
		Subsystem: "expiry",
		Name:      "sweep_blocked_total",
		Help:      "Users blocked by the daily expiry sweep for a passed expiry date.",
	})

	r.ExpirySweepWarned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vpncore",
		Subsystem: "expiry",
		Name:      "sweep_warned_total",
		Help:      "Users warned by the daily expiry sweep about an upcoming expiry.",
	})

	return r
}

// ObserveHTTP records one request's outcome against HTTPRequestsTotal and
// HTTPRequestDuration.
func (r *Registry) ObserveHTTP(method, path, status string, elapsed time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
