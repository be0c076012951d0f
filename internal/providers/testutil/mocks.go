package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
)

// MockCostService is a mock implementation of CostService for testing
type MockCostService struct {
	CalculateCostFunc func(provider, model string, inputTokens, outputTokens int, websearch bool) float64
}

func (m *MockCostService) CalculateCost(provider, model string, inputTokens, outputTokens int, websearch bool) float64 {
	if m.CalculateCostFunc != nil {
		return m.CalculateCostFunc(provider, model, inputTokens, outputTokens, websearch)
	}
	return 0.0015 // Default mock cost
}

func (m *MockCostService) GetCostByModel(provider, model string) (float64, float64, error) {
	return 0.0, 0.0, nil
}

// NewMockCostService creates a new mock cost service
func NewMockCostService() *MockCostService {
	return &MockCostService{}
}

// MockResponder records every request and answers with RespondFunc
type MockResponder struct {
	Name        string
	RespondFunc func(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error)

	mu       sync.Mutex
	requests []common.RespondRequest
}

func (m *MockResponder) Respond(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, req)
	}
	return &common.AIResponse{Response: "", Model: "mock"}, nil
}

func (m *MockResponder) GetProviderName() string {
	if m.Name == "" {
		return "mock"
	}
	return m.Name
}

// Requests returns a copy of the requests seen so far
func (m *MockResponder) Requests() []common.RespondRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]common.RespondRequest(nil), m.requests...)
}

// CallCount returns how many times Respond was called
func (m *MockResponder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// TextResponder answers every prompt with the same text and chunks
func TextResponder(text string, chunks ...common.GroundingChunk) *MockResponder {
	return &MockResponder{
		RespondFunc: func(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error) {
			return &common.AIResponse{Response: text, GroundingChunks: chunks, Model: "mock"}, nil
		},
	}
}

// FailingResponder fails every call with err
func FailingResponder(err error) *MockResponder {
	return &MockResponder{
		RespondFunc: func(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error) {
			return nil, err
		},
	}
}

// Chunk builds a web grounding chunk
func Chunk(uri, title string) common.GroundingChunk {
	return common.GroundingChunk{Web: &common.WebSource{URI: uri, Title: title}}
}

// NewJSONServer serves body with status for every request and counts hits
func NewJSONServer(status int, body string) (*httptest.Server, *int) {
	hits := 0
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	return server, &hits
}
