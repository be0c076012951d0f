package common

import (
	"errors"
	"fmt"
)

// The two failure kinds a responder can report. Adapters wrap them with %w.
var (
	// ErrServiceUnavailable covers network, auth, quota and upstream failures
	ErrServiceUnavailable = errors.New("ai responder unavailable")
	// ErrMalformedResponse means the call succeeded but the output could not be used
	ErrMalformedResponse = errors.New("ai responder returned a malformed response")
)

// StatusError is a non-2xx answer from an upstream API
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrServiceUnavailable
}

// Retryable reports whether repeating the call may succeed
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// WebSource is the web reference inside a grounding chunk
type WebSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// GroundingChunk is one citation-like reference returned alongside an answer
type GroundingChunk struct {
	Web *WebSource `json:"web,omitempty"`
}

// RespondRequest is a single call to an answer engine
type RespondRequest struct {
	Prompt            string
	SystemInstruction string
	SearchGrounding   bool
	// Entities names the brands the question is about. Live engines ignore it.
	Entities []string

	// Optional structured output. Schema is a JSON schema value.
	SchemaName string
	Schema     interface{}
}

// AIResponse contains the response from an AI provider
// Defined here to avoid import cycles
type AIResponse struct {
	Response        string
	GroundingChunks []GroundingChunk
	Model           string
	InputTokens     int
	OutputTokens    int
	Cost            float64
}

// CostCalculator prices a call. Implemented by services.CostService.
type CostCalculator interface {
	CalculateCost(provider, model string, inputTokens, outputTokens int, websearch bool) float64
}
