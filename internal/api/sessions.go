package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/wizard"
)

type addTopicRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type toggleTopicRequest struct {
	Selected *bool `json:"selected" validate:"required"`
}

type editPromptRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// AnalysisAccepted is returned when an analysis is dispatched in the background
type AnalysisAccepted struct {
	SessionID string      `json:"sessionId"`
	RunID     string      `json:"runId"`
	Step      wizard.Step `json:"step"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, s.deps.Store.Create())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.deps.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.Delete(chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// update runs fn against the session named in the URL and writes the result
func (s *Server) update(w http.ResponseWriter, r *http.Request, fn func(*wizard.Session) error) {
	session, err := s.deps.Store.Update(chi.URLParam(r, "id"), fn)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(session *wizard.Session) error {
		return wizard.Advance(session, wizard.StepInput)
	})
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, wizard.Back)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(session *wizard.Session) error {
		wizard.Reset(session)
		return nil
	})
}

func (s *Server) handleSubmitProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var profile models.BrandProfile
	if err := s.decode(r, &profile); err != nil {
		respondError(w, r, err)
		return
	}
	if err := wizard.ValidateProfile(profile); err != nil {
		respondError(w, r, err)
		return
	}

	// Check the step before paying for topic suggestions
	current, err := s.deps.Store.Get(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if current.Step != wizard.StepInput {
		respondError(w, r, fmt.Errorf("%w: profile can only be submitted at %s (current: %s)", wizard.ErrInvalidTransition, wizard.StepInput, current.Step))
		return
	}

	topics := s.deps.Topics.SuggestTopics(r.Context(), profile)
	logger.Log.Infof("[API] Session %s: %d topics suggested for %s", id, len(topics), profile.Name)

	s.update(w, r, func(session *wizard.Session) error {
		return wizard.SubmitProfile(session, profile, topics)
	})
}

func (s *Server) handleAddTopic(w http.ResponseWriter, r *http.Request) {
	var req addTopicRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	topic := s.deps.Topics.NewCustomTopic(req.Name)
	s.update(w, r, func(session *wizard.Session) error {
		return wizard.AddTopic(session, topic)
	})
}

func (s *Server) handleToggleTopic(w http.ResponseWriter, r *http.Request) {
	var req toggleTopicRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	topicID := chi.URLParam(r, "topicID")
	s.update(w, r, func(session *wizard.Session) error {
		return wizard.SetTopicSelected(session, topicID, *req.Selected)
	})
}

func (s *Server) handleGeneratePrompts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	current, err := s.deps.Store.Get(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if current.Step != wizard.StepTopicSelection {
		respondError(w, r, fmt.Errorf("%w: prompts are generated from %s (current: %s)", wizard.ErrInvalidTransition, wizard.StepTopicSelection, current.Step))
		return
	}
	if err := wizard.CanEnter(current, wizard.StepPromptPreview); err != nil {
		respondError(w, r, err)
		return
	}

	prompts := s.deps.Prompts.GeneratePrompts(r.Context(), *current.Profile, current.Topics)
	logger.Log.Infof("[API] Session %s: %d prompts generated", id, len(prompts))

	s.update(w, r, func(session *wizard.Session) error {
		return wizard.SetPrompts(session, prompts)
	})
}

func (s *Server) handleEditPrompt(w http.ResponseWriter, r *http.Request) {
	var req editPromptRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	promptID := chi.URLParam(r, "promptID")
	s.update(w, r, func(session *wizard.Session) error {
		return wizard.EditPrompt(session, promptID, req.Text)
	})
}

// handleAnalyze enters Analyzing and either dispatches the run (202) or,
// with ?wait=true, runs it inline and returns the finished session.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))

	var runID string
	session, err := s.deps.Store.Update(id, func(session *wizard.Session) error {
		var err error
		runID, err = wizard.BeginAnalysis(session)
		return err
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	if wait {
		finished, err := s.deps.Runner.Run(r.Context(), id, runID)
		if err != nil && finished == nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, finished)
		return
	}

	if err := s.deps.Dispatcher.Dispatch(r.Context(), id, runID); err != nil {
		if _, commitErr := s.deps.Runner.Commit(r.Context(), id, runID, nil, err); commitErr != nil && !errors.Is(commitErr, err) {
			logger.Log.Warnf("[API] Session %s: could not roll back analysis %s: %v", id, runID, commitErr)
		}
		internalError(w, r, fmt.Errorf("dispatch analysis: %w", err))
		return
	}

	writeJSON(w, http.StatusAccepted, AnalysisAccepted{SessionID: id, RunID: runID, Step: session.Step})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	session, err := s.deps.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if session.Report == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "report not ready"})
		return
	}
	writeJSON(w, http.StatusOK, session.Report)
}

func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	session, err := s.deps.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if session.Report == nil || session.Profile == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "report not ready"})
		return
	}

	data, err := s.deps.Export.ExportReport(*session.Profile, session.Report)
	if err != nil {
		internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(session.Profile.Name)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Log.Warnf("[API] Failed to write export for session %s: %v", session.ID, err)
	}
}

func exportFilename(brand string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, strings.TrimSpace(brand))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "brand"
	}
	return slug + "-geo-report.xlsx"
}
