package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	AssetCleanupDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "notely",
		Name:      "asset_cleanup_deleted_total",
		Help:      "Assets deleted by the background cleaner.",
	})
	AssetCleanupFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "notely",
		Name:      "asset_cleanup_failures_total",
		Help:      "Asset deletions that failed; the asset stays in the store.",
	})
	AssetCleanupDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "notely",
		Name:      "asset_cleanup_dropped_total",
		Help:      "Deletions dropped because the cleanup queue was full.",
	})
)

func init() {
	Registry.MustRegister(
		AssetCleanupDeleted,
		AssetCleanupFailures,
		AssetCleanupDropped,
	)
}

// Handler serves the registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
