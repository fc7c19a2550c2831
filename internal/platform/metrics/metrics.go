// Package metrics exposes the Prometheus collectors for the induction
// planning engine's HTTP surface and planning pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "induction_http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "induction_http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	PlanGenerateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "induction_plan_generate_total", Help: "Generate calls by outcome."},
		[]string{"outcome"},
	)
	OptimizerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "induction_optimizer_duration_seconds", Help: "Optimizer run duration in seconds, by source (local or remote).", Buckets: prometheus.DefBuckets},
		[]string{"source"},
	)
	ExternalOptimizerFallback = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "induction_external_optimizer_fallback_total", Help: "Times the external optimizer was unreachable or malformed and the engine fell back to the local optimizer."},
		[]string{"reason"},
	)
)

var regOnce sync.Once

// RegisterDefault registers every collector on the dedicated registry.
// Safe to call multiple times; registration happens once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(PlanGenerateTotal)
		Registry.MustRegister(OptimizerDuration)
		Registry.MustRegister(ExternalOptimizerFallback)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
