package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
)

const ProviderName = "anthropic"

// groundingSuffix asks for inline source URLs, which the citation normalizer
// picks up when no structured grounding is returned
const groundingSuffix = "\n\nCite the web sources you rely on as full URLs on their own lines."

// structuredSuffix is appended when a JSON schema is requested
const structuredSuffix = "\n\nReturn ONLY a valid JSON object matching the requested structure, no other text."

type Provider struct {
	client      anthropic.Client
	model       string
	costService common.CostCalculator
}

func NewProvider(cfg *config.Config, costService common.CostCalculator, opts ...option.RequestOption) *Provider {
	clientOpts := append([]option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithMaxRetries(0),
	}, opts...)

	logger.Log.Infof("[AnthropicProvider] Using model %s", cfg.AnthropicModel)

	return &Provider{
		client:      anthropic.NewClient(clientOpts...),
		model:       cfg.AnthropicModel,
		costService: costService,
	}
}

func (p *Provider) GetProviderName() string {
	return ProviderName
}

func (p *Provider) Respond(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error) {
	prompt := req.Prompt
	if req.SearchGrounding {
		prompt += groundingSuffix
	}
	if req.Schema != nil {
		prompt += structuredSuffix
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 2000,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
		Temperature: anthropic.Float(0.7),
	}
	if req.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemInstruction}}
	}

	response, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("message request failed: %w", &common.StatusError{
				Provider:   ProviderName,
				StatusCode: apiErr.StatusCode,
				Body:       apiErr.Error(),
			})
		}
		return nil, fmt.Errorf("message request failed: %v: %w", err, common.ErrServiceUnavailable)
	}

	text := extractResponseText(response)
	if text == "" {
		return nil, fmt.Errorf("no text content in response: %w", common.ErrMalformedResponse)
	}

	inputTokens := int(response.Usage.InputTokens)
	outputTokens := int(response.Usage.OutputTokens)

	return &common.AIResponse{
		Response:     text,
		Model:        p.model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         p.costService.CalculateCost(ProviderName, p.model, inputTokens, outputTokens, false),
	}, nil
}

func extractResponseText(response *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range response.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(b.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
