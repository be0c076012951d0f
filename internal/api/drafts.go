package api

import (
	"net/http"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
)

type draftContentRequest struct {
	Topic       string             `json:"topic" validate:"required,max=300"`
	ContentType string             `json:"contentType" validate:"required,max=100"`
	Brand       string             `json:"brand" validate:"required,max=200"`
	Tone        models.ContentTone `json:"tone"`
}

type draftEmailRequest struct {
	Site    string             `json:"site" validate:"required,max=300"`
	Contact string             `json:"contact" validate:"omitempty,max=300"`
	Angle   string             `json:"angle" validate:"required,max=300"`
	Brand   string             `json:"brand" validate:"required,max=200"`
	Tone    models.ContentTone `json:"tone"`
}

// DraftResponse carries generated Markdown (content) or plain text (email)
type DraftResponse struct {
	Draft string `json:"draft"`
}

func (s *Server) handleDraftContent(w http.ResponseWriter, r *http.Request) {
	var req draftContentRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	tone, err := toneOrDefault(req.Tone)
	if err != nil {
		respondError(w, r, err)
		return
	}

	draft := s.deps.Drafting.DraftContent(r.Context(), req.Topic, req.ContentType, req.Brand, tone)
	writeJSON(w, http.StatusOK, DraftResponse{Draft: draft})
}

func (s *Server) handleDraftEmail(w http.ResponseWriter, r *http.Request) {
	var req draftEmailRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	tone, err := toneOrDefault(req.Tone)
	if err != nil {
		respondError(w, r, err)
		return
	}

	draft := s.deps.Drafting.DraftEmail(r.Context(), req.Site, req.Contact, req.Angle, req.Brand, tone)
	writeJSON(w, http.StatusOK, DraftResponse{Draft: draft})
}

func toneOrDefault(tone models.ContentTone) (models.ContentTone, error) {
	if tone == "" {
		return models.ToneProfessional, nil
	}
	if err := models.ValidateTone(tone); err != nil {
		return "", err
	}
	return tone, nil
}
