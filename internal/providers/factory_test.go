package providers_test

import (
	"strings"
	"testing"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/testutil"
)

func TestFactoryCreatesCorrectProvider(t *testing.T) {
	tests := []struct {
		name             string
		expectedProvider string
		shouldError      bool
	}{
		{"mock", "mock", false},
		{"stub", "mock", false},
		{"openai", "openai", false},
		{"gpt-4.1", "openai", false},
		{"ChatGPT", "openai", false},
		{"anthropic", "anthropic", false},
		{"claude-sonnet-4-20250514", "anthropic", false},
		{"gemini", "gemini", false},
		{"gemini-2.5-flash", "gemini", false},
		{"perplexity", "", true},
		{"", "", true},
	}

	cfg := testutil.SampleConfig()
	costService := testutil.NewMockCostService()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := providers.NewProvider(tt.name, cfg, costService)

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error for %q, but got none", tt.name)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", tt.name, err)
			}
			if provider.GetProviderName() != tt.expectedProvider {
				t.Errorf("Expected provider %s, got %s", tt.expectedProvider, provider.GetProviderName())
			}
		})
	}
}

func TestFactoryRequiresAPIKeys(t *testing.T) {
	for _, name := range []string{"openai", "anthropic", "gemini"} {
		t.Run(name, func(t *testing.T) {
			cfg := testutil.SampleConfig()
			cfg.OpenAIAPIKey = ""
			cfg.AnthropicAPIKey = ""
			cfg.GeminiAPIKey = ""

			_, err := providers.NewProvider(name, cfg, testutil.NewMockCostService())
			if err == nil || !strings.Contains(err.Error(), "API key is empty") {
				t.Errorf("Expected missing key error, got %v", err)
			}
		})
	}
}

func TestNewResponderWrapsLiveProviders(t *testing.T) {
	cfg := testutil.SampleConfig()

	cfg.ResponderProvider = "mock"
	r, err := providers.NewResponder(cfg, testutil.NewMockCostService())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.GetProviderName() != "mock" {
		t.Errorf("Expected mock, got %s", r.GetProviderName())
	}

	cfg.ResponderProvider = "gemini"
	r, err = providers.NewResponder(cfg, testutil.NewMockCostService())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// the wrapper reports the wrapped provider's name
	if r.GetProviderName() != "gemini" {
		t.Errorf("Expected gemini, got %s", r.GetProviderName())
	}
}
