package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Pipeline metrics
	PromptsAnalyzed     *prometheus.CounterVec
	ResponderDuration   *prometheus.HistogramVec
	ReportsGenerated    prometheus.Counter
	GenerationFallbacks *prometheus.CounterVec
	ActiveSessions      prometheus.Gauge
	SessionsExpired     prometheus.Counter
	WorkflowRunsTotal   *prometheus.CounterVec
}

// New registers all metrics on the default Prometheus registry.
// It must only be called once per process; tests use NewWithRegistry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers all metrics on reg
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		PromptsAnalyzed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geo_prompts_analyzed_total",
				Help: "Total number of prompts sent to the answer engine",
			},
			[]string{"outcome"}, // mentioned, missing, failed
		),
		ResponderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "geo_responder_call_duration_seconds",
				Help:    "Answer engine call latency in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),
		ReportsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "geo_reports_generated_total",
			Help: "Total number of visibility reports aggregated",
		}),
		GenerationFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geo_generation_fallbacks_total",
				Help: "Times a generator used its built-in defaults",
			},
			[]string{"generator"}, // topics, prompts, content, email
		),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "geo_wizard_sessions_active",
			Help: "Number of wizard sessions held in memory",
		}),
		SessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "geo_wizard_sessions_expired_total",
			Help: "Total number of wizard sessions removed by the sweeper",
		}),
		WorkflowRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geo_workflow_runs_total",
				Help: "Total number of analysis workflow runs",
			},
			[]string{"status"}, // completed, failed
		),
	}
}

// Middleware records request count and latency per chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}

// The recorders below accept a nil receiver so callers may run without metrics.

// RecordPromptAnalyzed increments the analyzed prompts counter
func (m *Metrics) RecordPromptAnalyzed(outcome string) {
	if m == nil {
		return
	}
	m.PromptsAnalyzed.WithLabelValues(outcome).Inc()
}

// RecordResponderCall records answer engine latency
func (m *Metrics) RecordResponderCall(provider string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ResponderDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordReportGenerated increments reports generated counter
func (m *Metrics) RecordReportGenerated() {
	if m == nil {
		return
	}
	m.ReportsGenerated.Inc()
}

// RecordFallback increments the fallback counter for a generator
func (m *Metrics) RecordFallback(generator string) {
	if m == nil {
		return
	}
	m.GenerationFallbacks.WithLabelValues(generator).Inc()
}

// UpdateActiveSessions sets the active sessions gauge
func (m *Metrics) UpdateActiveSessions(count int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(count))
}

// RecordSessionsExpired adds n to the expired sessions counter
func (m *Metrics) RecordSessionsExpired(n int) {
	if m == nil {
		return
	}
	m.SessionsExpired.Add(float64(n))
}

// RecordWorkflowRun increments workflow runs counter
func (m *Metrics) RecordWorkflowRun(success bool) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "completed"
	}
	m.WorkflowRunsTotal.WithLabelValues(status).Inc()
}
