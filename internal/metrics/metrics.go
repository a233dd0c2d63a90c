// Package metrics exposes Prometheus counters for the supervise loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LaunchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fogoctl_launches_total", Help: "Bot processes started"},
	)
	RestartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fogoctl_restarts_total", Help: "Bot restarts triggered by the watcher"},
		[]string{"reason"},
	)
	InstallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fogoctl_installs_total", Help: "Dependency install attempts"},
		[]string{"result"},
	)
	InstallDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fogoctl_install_duration_seconds",
			Help:    "Wall time of dependency install runs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(LaunchesTotal, RestartsTotal, InstallsTotal, InstallDuration)
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
