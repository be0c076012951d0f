package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
)

const ProviderName = "gemini"

// Provider calls the Gemini generateContent REST endpoint. Grounded requests
// enable the google_search tool and return its grounding chunks.
type Provider struct {
	apiKey      string
	baseURL     string
	model       string
	costService common.CostCalculator
	httpClient  *http.Client
}

func NewProvider(cfg *config.Config, costService common.CostCalculator) *Provider {
	baseURL := strings.TrimSuffix(cfg.GeminiBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	logger.Log.Infof("[GeminiProvider] Using model %s", cfg.GeminiModel)

	return &Provider{
		apiKey:      cfg.GeminiAPIKey,
		baseURL:     baseURL,
		model:       cfg.GeminiModel,
		costService: costService,
		httpClient:  &http.Client{Timeout: 2 * time.Minute},
	}
}

func (p *Provider) GetProviderName() string {
	return ProviderName
}

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type GenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type GenerateRequest struct {
	Contents          []Content        `json:"contents"`
	SystemInstruction *Content         `json:"systemInstruction,omitempty"`
	Tools             []Tool           `json:"tools,omitempty"`
	GenerationConfig  GenerationConfig `json:"generationConfig"`
}

type GroundingMetadata struct {
	GroundingChunks []common.GroundingChunk `json:"groundingChunks"`
}

type Candidate struct {
	Content           Content            `json:"content"`
	FinishReason      string             `json:"finishReason"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
}

type GenerateResponse struct {
	Candidates    []Candidate   `json:"candidates"`
	UsageMetadata UsageMetadata `json:"usageMetadata"`
}

func (p *Provider) Respond(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error) {
	body := GenerateRequest{
		Contents:         []Content{{Role: "user", Parts: []Part{{Text: req.Prompt}}}},
		GenerationConfig: GenerationConfig{Temperature: 0.7},
	}
	if req.SystemInstruction != "" {
		body.SystemInstruction = &Content{Parts: []Part{{Text: req.SystemInstruction}}}
	}
	if req.SearchGrounding {
		body.Tools = []Tool{{GoogleSearch: &struct{}{}}}
	} else if req.Schema != nil {
		// the search tool cannot be combined with a JSON mime type
		body.GenerationConfig.ResponseMimeType = "application/json"
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, url.PathEscape(p.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generateContent request failed: %v: %w", err, common.ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &common.StatusError{Provider: ProviderName, StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	var genResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("failed to decode response (%v): %w", err, common.ErrMalformedResponse)
	}
	if len(genResp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned: %w", common.ErrMalformedResponse)
	}

	candidate := genResp.Candidates[0]
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	text := sb.String()
	if text == "" {
		return nil, fmt.Errorf("empty candidate (finish reason %s): %w", candidate.FinishReason, common.ErrMalformedResponse)
	}

	var chunks []common.GroundingChunk
	if candidate.GroundingMetadata != nil {
		chunks = candidate.GroundingMetadata.GroundingChunks
	}

	in := genResp.UsageMetadata.PromptTokenCount
	out := genResp.UsageMetadata.CandidatesTokenCount

	return &common.AIResponse{
		Response:        text,
		GroundingChunks: chunks,
		Model:           p.model,
		InputTokens:     in,
		OutputTokens:    out,
		Cost:            p.costService.CalculateCost(ProviderName, p.model, in, out, req.SearchGrounding),
	}, nil
}
