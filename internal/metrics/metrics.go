// Package metrics owns the Prometheus registry of the API process.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AI call flows.
const (
	FlowDesigns = "designs"
	FlowImage   = "image"
	FlowRefine  = "refine"
	FlowPreview = "ar_preview"
)

// Metrics groups the collectors registered on a private registry so tests can
// create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	aiRequests       *prometheus.CounterVec
	aiDuration       *prometheus.HistogramVec
	libraryOps       *prometheus.CounterVec
	libraryDegraded  prometheus.Counter
	httpRequests     *prometheus.CounterVec
	staleCompletions *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		aiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tattoovision_ai_requests_total",
			Help: "AI provider calls partitioned by flow, provider and outcome.",
		}, []string{"flow", "provider", "outcome"}),
		aiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tattoovision_ai_request_duration_seconds",
			Help:    "Latency of AI provider calls.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"flow", "provider"}),
		libraryOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tattoovision_library_operations_total",
			Help: "Design library operations partitioned by operation and outcome.",
		}, []string{"op", "outcome"}),
		libraryDegraded: factory.NewCounter(prometheus.CounterOpts{
			Name: "tattoovision_library_degraded_reads_total",
			Help: "Library enumerations that fell back to an empty collection.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tattoovision_http_requests_total",
			Help: "HTTP requests partitioned by method and status code class.",
		}, []string{"method", "status"}),
		staleCompletions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tattoovision_stale_completions_total",
			Help: "AI completions discarded because the target changed meanwhile.",
		}, []string{"flow"}),
	}
}

// ObserveAI records one provider call.
func (m *Metrics) ObserveAI(flow, provider, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.aiRequests.WithLabelValues(flow, provider, outcome).Inc()
	m.aiDuration.WithLabelValues(flow, provider).Observe(time.Since(started).Seconds())
}

// LibraryOp counts one library operation.
func (m *Metrics) LibraryOp(op, outcome string) {
	if m == nil {
		return
	}
	m.libraryOps.WithLabelValues(op, outcome).Inc()
}

// LibraryDegraded counts an enumeration that degraded to empty.
func (m *Metrics) LibraryDegraded() {
	if m == nil {
		return
	}
	m.libraryDegraded.Inc()
}

// StaleCompletion counts a completion dropped by the staleness guard.
func (m *Metrics) StaleCompletion(flow string) {
	if m == nil {
		return
	}
	m.staleCompletions.WithLabelValues(flow).Inc()
}

// HTTPRequest counts one served request.
func (m *Metrics) HTTPRequest(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, statusClass(status)).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts every request passing through it.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.HTTPRequest(r.Method, sw.status)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
