package services_test

import (
	"math"
	"testing"

	"github.com/AI-Template-SDK/senso-geo-wizard/services"
)

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		model     string
		in, out   int
		websearch bool
		expected  float64
	}{
		{"openai tokens", "openai", "gpt-4.1", 1_000_000, 1_000_000, false, 15.00},
		{"openai with search", "openai", "gpt-4.1", 0, 0, true, 0.035},
		{"anthropic", "anthropic", "claude-sonnet-4-20250514", 1_000_000, 0, true, 3.01},
		{"gemini", "gemini", "gemini-2.5-flash", 1_000_000, 1_000_000, false, 2.80},
		{"unknown model defaults to gpt-4.1", "openai", "mystery", 1_000_000, 0, false, 3.00},
		{"mock is free", "mock", "ChatGPT-4o (simulated)", 1_000_000, 1_000_000, true, 0},
	}

	svc := services.NewCostService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.CalculateCost(tt.provider, tt.model, tt.in, tt.out, tt.websearch)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
