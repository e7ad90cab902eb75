// internal/app/features/metrics/routes.go
//
// Prometheus scrape endpoint. The counters themselves live in
// internal/app/system/metrics and are incremented by the assignment
// engine and lifecycle service.
package metrics

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes serves the Prometheus text exposition (mounted at "/metrics").
func Routes() chi.Router {
	r := chi.NewRouter()
	r.Handle("/", promhttp.Handler())
	return r
}
