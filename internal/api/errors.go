package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/wizard"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError maps wizard and validation failures onto status codes.
// Anything unrecognised is treated as bad input for the current step.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, wizard.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "invalid_transition", Message: err.Error()})
	case errors.As(err, &verrs):
		logger.Log.Debugf("[API] Validation failed on %s: %v", r.URL.Path, err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
	}
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Log.Errorf("[API] %s %s failed: %v", r.Method, r.URL.Path, err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// decode reads a JSON body into v and validates its struct tags
func (s *Server) decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return s.validate.Struct(v)
}
