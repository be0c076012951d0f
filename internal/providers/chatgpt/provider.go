package chatgpt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
)

const ProviderName = "openai"

// Provider answers prompts with OpenAI. Grounded requests go through the
// responses API web search tool, everything else through chat completions.
type Provider struct {
	client      openai.Client
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	costService common.CostCalculator
}

// NewProvider creates a new OpenAI provider
func NewProvider(cfg *config.Config, costService common.CostCalculator) *Provider {
	baseURL := strings.TrimSuffix(cfg.OpenAIBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithBaseURL(baseURL+"/"),
		option.WithMaxRetries(0), // retries are handled by the resilient wrapper
	)

	logger.Log.Infof("[OpenAIProvider] Using model %s at %s", cfg.OpenAIModel, baseURL)

	return &Provider{
		client:      client,
		httpClient:  &http.Client{Timeout: 2 * time.Minute},
		apiKey:      cfg.OpenAIAPIKey,
		baseURL:     baseURL,
		model:       cfg.OpenAIModel,
		costService: costService,
	}
}

func (p *Provider) GetProviderName() string {
	return ProviderName
}

func (p *Provider) Respond(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error) {
	if req.SearchGrounding {
		return p.runWebSearch(ctx, req)
	}
	return p.runChat(ctx, req)
}

func (p *Provider) runChat(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.SystemInstruction != "" {
		messages = append(messages, openai.SystemMessage(req.SystemInstruction))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       openai.ChatModel(p.model),
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(2000),
	}

	if req.Schema != nil {
		name := req.SchemaName
		if name == "" {
			name = "structured_response"
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	response, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, p.wrapSDKError("chat completion failed", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned: %w", common.ErrMalformedResponse)
	}

	inputTokens := int(response.Usage.PromptTokens)
	outputTokens := int(response.Usage.CompletionTokens)

	return &common.AIResponse{
		Response:     response.Choices[0].Message.Content,
		Model:        p.model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         p.costService.CalculateCost(ProviderName, p.model, inputTokens, outputTokens, false),
	}, nil
}

// runWebSearch uses OpenAI's responses API directly
func (p *Provider) runWebSearch(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error) {
	requestBody := WebSearchRequest{
		Model:        p.model,
		Instructions: req.SystemInstruction,
		Tools:        []WebSearchTool{{Type: "web_search_preview"}},
		Input:        req.Prompt,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/responses", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %v: %w", err, common.ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &common.StatusError{Provider: ProviderName, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var webSearchResp WebSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&webSearchResp); err != nil {
		return nil, fmt.Errorf("failed to decode web search response (%v): %w", err, common.ErrMalformedResponse)
	}

	text, chunks := extractMessage(webSearchResp)
	if text == "" {
		return nil, fmt.Errorf("no message content found in web search response: %w", common.ErrMalformedResponse)
	}

	return &common.AIResponse{
		Response:        text,
		GroundingChunks: chunks,
		Model:           p.model,
		InputTokens:     webSearchResp.Usage.InputTokens,
		OutputTokens:    webSearchResp.Usage.OutputTokens,
		Cost:            p.costService.CalculateCost(ProviderName, p.model, webSearchResp.Usage.InputTokens, webSearchResp.Usage.OutputTokens, true),
	}, nil
}

// extractMessage returns the first output_text block and its url citations
func extractMessage(resp WebSearchResponse) (string, []common.GroundingChunk) {
	for _, output := range resp.Output {
		if output.Type != "message" {
			continue
		}
		for _, content := range output.Content {
			if content.Type != "output_text" || content.Text == "" {
				continue
			}
			var chunks []common.GroundingChunk
			for _, a := range content.Annotations {
				if a.Type != "url_citation" {
					continue
				}
				chunks = append(chunks, common.GroundingChunk{
					Web: &common.WebSource{URI: a.URL, Title: a.Title},
				})
			}
			return content.Text, chunks
		}
	}
	return "", nil
}

func (p *Provider) wrapSDKError(msg string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", msg, &common.StatusError{
			Provider:   ProviderName,
			StatusCode: apiErr.StatusCode,
			Body:       apiErr.Error(),
		})
	}
	return fmt.Errorf("%s: %v: %w", msg, err, common.ErrServiceUnavailable)
}
