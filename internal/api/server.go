package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/metrics"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/wizard"
	"github.com/AI-Template-SDK/senso-geo-wizard/services"
)

// Deps are the collaborators the HTTP surface is built from
type Deps struct {
	Store      *wizard.Store
	Runner     *wizard.Runner
	Dispatcher wizard.Dispatcher
	Topics     services.TopicService
	Prompts    services.PromptService
	Drafting   services.DraftingService
	Export     services.ReportExportService
	Metrics    *metrics.Metrics

	// Gatherer backs /metrics; defaults to the global registry
	Gatherer prometheus.Gatherer
	// Inngest is mounted at /api/inngest when set
	Inngest http.Handler
}

type Server struct {
	deps     Deps
	router   *chi.Mux
	validate *validator.Validate
}

func New(deps Deps) *Server {
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = deps.Runner
	}

	s := &Server{
		deps:     deps,
		router:   chi.NewRouter(),
		validate: validator.New(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.deps.Metrics.Middleware)

	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	if s.deps.Inngest != nil {
		s.router.Handle("/api/inngest", s.deps.Inngest)
	}

	s.router.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/start", s.handleStart)
			r.Post("/profile", s.handleSubmitProfile)
			r.Post("/topics", s.handleAddTopic)
			r.Put("/topics/{topicID}", s.handleToggleTopic)
			r.Post("/prompts", s.handleGeneratePrompts)
			r.Put("/prompts/{promptID}", s.handleEditPrompt)
			r.Post("/analyze", s.handleAnalyze)
			r.Post("/back", s.handleBack)
			r.Post("/reset", s.handleReset)
			r.Get("/report", s.handleReport)
			r.Get("/report.xlsx", s.handleReportExport)
		})
	})

	s.router.Route("/api/drafts", func(r chi.Router) {
		r.Post("/content", s.handleDraftContent)
		r.Post("/email", s.handleDraftEmail)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "senso-geo-wizard",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorf("[API] Failed to encode response: %v", err)
	}
}
