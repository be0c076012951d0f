package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/gemini"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/testutil"
)

const groundedBody = `{
	"candidates": [{
		"content": {"role": "model", "parts": [{"text": "Acme is "}, {"text": "excellent."}]},
		"finishReason": "STOP",
		"groundingMetadata": {"groundingChunks": [
			{"web": {"uri": "https://vertexaisearch.cloud.google.com/grounding-api-redirect/abc", "title": "g2.com"}},
			{"web": {"uri": "https://www.capterra.com/acme", "title": "Acme Reviews"}}
		]}
	}],
	"usageMetadata": {"promptTokenCount": 30, "candidatesTokenCount": 12}
}`

func TestRespondGrounded(t *testing.T) {
	var gotPath, gotKey string
	var gotBody gemini.GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(groundedBody))
	}))
	defer server.Close()

	cfg := testutil.SampleConfig()
	cfg.GeminiBaseURL = server.URL

	resp, err := gemini.NewProvider(cfg, testutil.NewMockCostService()).Respond(context.Background(), common.RespondRequest{
		Prompt:            "best crm?",
		SystemInstruction: "sys",
		SearchGrounding:   true,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("Unexpected path %s", gotPath)
	}
	if gotKey != "test-gemini-key" {
		t.Errorf("Expected api key header, got %q", gotKey)
	}
	if len(gotBody.Tools) != 1 || gotBody.Tools[0].GoogleSearch == nil {
		t.Error("Expected google_search tool for grounded request")
	}
	if gotBody.GenerationConfig.ResponseMimeType != "" {
		t.Error("Grounded request must not set a JSON mime type")
	}
	if resp.Response != "Acme is excellent." {
		t.Errorf("Expected parts to be joined, got %q", resp.Response)
	}
	if len(resp.GroundingChunks) != 2 || resp.GroundingChunks[1].Web.Title != "Acme Reviews" {
		t.Errorf("Unexpected chunks: %+v", resp.GroundingChunks)
	}
}

func TestRespondStructuredSetsMimeType(t *testing.T) {
	var gotBody gemini.GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{}"}]}}]}`))
	}))
	defer server.Close()

	cfg := testutil.SampleConfig()
	cfg.GeminiBaseURL = server.URL

	_, err := gemini.NewProvider(cfg, testutil.NewMockCostService()).Respond(context.Background(), common.RespondRequest{
		Prompt: "topics",
		Schema: map[string]interface{}{"type": "object"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gotBody.GenerationConfig.ResponseMimeType != "application/json" {
		t.Errorf("Expected JSON mime type, got %q", gotBody.GenerationConfig.ResponseMimeType)
	}
	if len(gotBody.Tools) != 0 {
		t.Error("Structured request must not enable search")
	}
}

func TestRespondErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		expectErr error
	}{
		{"server error", http.StatusServiceUnavailable, `{}`, common.ErrServiceUnavailable},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, common.ErrMalformedResponse},
		{"empty text", http.StatusOK, `{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`, common.ErrMalformedResponse},
		{"bad json", http.StatusOK, `{`, common.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := testutil.NewJSONServer(tt.status, tt.body)
			defer server.Close()

			cfg := testutil.SampleConfig()
			cfg.GeminiBaseURL = server.URL

			_, err := gemini.NewProvider(cfg, testutil.NewMockCostService()).Respond(context.Background(), common.RespondRequest{Prompt: "q"})
			if !errors.Is(err, tt.expectErr) {
				t.Errorf("Expected %v, got %v", tt.expectErr, err)
			}
		})
	}
}
