package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/metrics"
)

func TestRecordersUpdateCounters(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	m.RecordPromptAnalyzed("mentioned")
	m.RecordPromptAnalyzed("mentioned")
	m.RecordPromptAnalyzed("failed")
	m.RecordReportGenerated()
	m.RecordFallback("topics")
	m.UpdateActiveSessions(3)
	m.RecordSessionsExpired(2)
	m.RecordWorkflowRun(true)
	m.RecordResponderCall("mock", 10*time.Millisecond)

	if got := testutil.ToFloat64(m.PromptsAnalyzed.WithLabelValues("mentioned")); got != 2 {
		t.Errorf("Expected 2 mentioned prompts, got %v", got)
	}
	if got := testutil.ToFloat64(m.PromptsAnalyzed.WithLabelValues("failed")); got != 1 {
		t.Errorf("Expected 1 failed prompt, got %v", got)
	}
	if got := testutil.ToFloat64(m.ReportsGenerated); got != 1 {
		t.Errorf("Expected 1 report, got %v", got)
	}
	if got := testutil.ToFloat64(m.ActiveSessions); got != 3 {
		t.Errorf("Expected 3 active sessions, got %v", got)
	}
	if got := testutil.ToFloat64(m.SessionsExpired); got != 2 {
		t.Errorf("Expected 2 expired sessions, got %v", got)
	}
	if got := testutil.ToFloat64(m.WorkflowRunsTotal.WithLabelValues("completed")); got != 1 {
		t.Errorf("Expected 1 completed run, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.RecordPromptAnalyzed("mentioned")
	m.RecordReportGenerated()
	m.RecordFallback("prompts")
	m.UpdateActiveSessions(1)
	m.RecordSessionsExpired(1)
	m.RecordWorkflowRun(false)
	m.RecordResponderCall("mock", time.Second)
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/sessions/{id}", "404"))
	if got != 1 {
		t.Errorf("Expected 1 request recorded under route pattern, got %v", got)
	}
}
