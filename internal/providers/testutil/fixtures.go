package testutil

import (
	"time"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
)

// SampleConfig returns a test configuration with no pacing delays
func SampleConfig() *config.Config {
	return &config.Config{
		Environment:       "test",
		ResponderProvider: "mock",
		OpenAIAPIKey:      "test-openai-key",
		OpenAIModel:       "gpt-4.1",
		AnthropicAPIKey:   "test-anthropic-key",
		AnthropicModel:    "claude-sonnet-4-20250514",
		GeminiAPIKey:      "test-gemini-key",
		GeminiModel:       "gemini-2.5-flash",
		MockSeed:          7,
		Analysis: config.AnalysisConfig{
			MaxAnalyzedPrompts: 10,
			PromptsPerTopic:    10,
			Pacing:             0,
			CallTimeout:        2 * time.Second,
			Workers:            1,
		},
		Resilience: config.ResilienceConfig{
			MaxRetries:      2,
			RetryBaseDelay:  time.Millisecond,
			BreakerFailures: 5,
			BreakerTimeout:  time.Second,
		},
		SessionTTL: time.Hour,
	}
}

// SampleProfile returns the Acme/Beta profile used across tests
func SampleProfile() models.BrandProfile {
	return models.BrandProfile{
		Name:     "Acme",
		Website:  "https://www.acme.com",
		Industry: "CRM",
		Competitors: []models.Competitor{
			{Name: "Beta", Website: "https://beta.io"},
		},
	}
}

// SampleTopics returns two selected topics and one deselected topic
func SampleTopics() []models.Topic {
	return []models.Topic{
		{ID: "topic-1", Name: "CRM Software Tools", Selected: true},
		{ID: "topic-2", Name: "Best Pricing & ROI", Selected: true},
		{ID: "topic-3", Name: "Integration Capabilities", Selected: false},
	}
}

// SamplePrompt returns an unanalyzed prompt for a topic
func SamplePrompt(id, topicID string, intent models.Intent) models.PromptAnalysisResult {
	return models.PromptAnalysisResult{
		ID:      id,
		TopicID: topicID,
		Text:    "What are the top rated CRM tools similar to Beta?",
		Intent:  intent,
	}
}

// AnalyzedPrompt returns an enriched prompt with the given signals
func AnalyzedPrompt(id, topicID string, brandMentioned bool, competitors ...string) models.PromptAnalysisResult {
	p := SamplePrompt(id, topicID, models.IntentComparison)
	p.Analyzed = true
	p.BrandMentioned = brandMentioned
	p.CompetitorsMentioned = competitors
	p.Sentiment = models.SentimentNeutral
	p.Citations = []models.Citation{}
	if competitors == nil {
		p.CompetitorsMentioned = []string{}
	}
	return p
}
