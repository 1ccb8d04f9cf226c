// pkg/metrics/metrics.go - prometheus collectors shared by the catalog server and install agent.

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InstallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "appstore_agent_installs_total",
		Help: "Install pipeline runs by install type and outcome.",
	}, []string{"install_type", "outcome"})

	InstallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "appstore_agent_install_duration_seconds",
		Help:    "Wall time of install pipeline runs, download included.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	}, []string{"install_type", "outcome"})

	CatalogMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "appstore_catalog_mutations_total",
		Help: "Catalog create, update and delete calls by result.",
	}, []string{"operation", "result"})

	MetricsItems = []prometheus.Collector{
		InstallsTotal,
		InstallDuration,
		CatalogMutationsTotal,
	}
)

// ObserveInstall records one pipeline run.
func ObserveInstall(installType, outcome string, elapsed time.Duration) {
	InstallsTotal.WithLabelValues(installType, outcome).Inc()
	InstallDuration.WithLabelValues(installType, outcome).Observe(elapsed.Seconds())
}

// ObserveCatalogMutation records one catalog write and its result label.
func ObserveCatalogMutation(operation, result string) {
	CatalogMutationsTotal.WithLabelValues(operation, result).Inc()
}

// NewRegistry returns a registry holding the application collectors plus the
// Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(MetricsItems...)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
