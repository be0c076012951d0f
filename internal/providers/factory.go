package providers

import (
	"fmt"
	"strings"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/chatgpt"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/claude"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/gemini"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/mock"
)

// NewProvider creates the appropriate responder based on a provider or model name
func NewProvider(name string, cfg *config.Config, costService common.CostCalculator) (Responder, error) {
	nameLower := strings.ToLower(name)

	if strings.Contains(nameLower, "mock") || strings.Contains(nameLower, "stub") {
		logger.Log.Infof("[ProviderFactory] 🎯 Selected deterministic mock responder (seed %d)", cfg.MockSeed)
		return mock.NewProvider(cfg.MockSeed, 0), nil
	}

	if strings.Contains(nameLower, "openai") || strings.Contains(nameLower, "gpt") {
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is empty in config")
		}
		logger.Log.Infof("[ProviderFactory] 🎯 Selected OpenAI provider for: %s", name)
		return chatgpt.NewProvider(cfg, costService), nil
	}

	if strings.Contains(nameLower, "anthropic") || strings.Contains(nameLower, "claude") ||
		strings.Contains(nameLower, "sonnet") || strings.Contains(nameLower, "opus") || strings.Contains(nameLower, "haiku") {
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key is empty in config")
		}
		logger.Log.Infof("[ProviderFactory] 🎯 Selected Anthropic provider for: %s", name)
		return claude.NewProvider(cfg, costService), nil
	}

	if strings.Contains(nameLower, "gemini") || strings.Contains(nameLower, "google") {
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("Gemini API key is empty in config")
		}
		logger.Log.Infof("[ProviderFactory] 🎯 Selected Gemini provider for: %s", name)
		return gemini.NewProvider(cfg, costService), nil
	}

	return nil, fmt.Errorf("unsupported responder: %q", name)
}

// NewResponder builds the configured responder. Live providers are wrapped
// with retries and a circuit breaker; the mock is returned as is.
func NewResponder(cfg *config.Config, costService common.CostCalculator) (Responder, error) {
	responder, err := NewProvider(cfg.ResponderProvider, cfg, costService)
	if err != nil {
		return nil, err
	}
	if responder.GetProviderName() == mock.ProviderName {
		return responder, nil
	}
	return NewResilientResponder(responder, cfg.Resilience), nil
}
