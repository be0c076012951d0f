package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/metrics"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
)

type promptService struct {
	responder providers.Responder
	perTopic  int
	metrics   *metrics.Metrics
}

func NewPromptService(responder providers.Responder, cfg config.AnalysisConfig, m *metrics.Metrics) PromptService {
	perTopic := cfg.PromptsPerTopic
	if perTopic <= 0 {
		perTopic = 10
	}
	return &promptService{responder: responder, perTopic: perTopic, metrics: m}
}

// GeneratePrompts creates prompts for the selected topics only. Each topic is
// generated independently; a topic whose call fails gets the default prompts.
func (s *promptService) GeneratePrompts(ctx context.Context, profile models.BrandProfile, topics []models.Topic) []models.PromptAnalysisResult {
	var prompts []models.PromptAnalysisResult

	tIdx := 0
	for _, topic := range topics {
		if !topic.Selected {
			continue
		}

		texts, err := s.generateLive(ctx, profile, topic)
		if err != nil {
			logger.Log.Warnf("[GeneratePrompts] Using default prompts for topic %q: %v", topic.Name, err)
			s.metrics.RecordFallback("prompts")
			texts = s.defaultPrompts(profile, topic)
		}

		for i, p := range texts {
			prompts = append(prompts, models.PromptAnalysisResult{
				ID:                   fmt.Sprintf("prompt-%d-%d", tIdx, i),
				TopicID:              topic.ID,
				Topic:                topic.Name,
				Text:                 p.Text,
				Intent:               models.Intent(p.Intent),
				CompetitorsMentioned: []string{},
				Citations:            []models.Citation{},
			})
		}
		tIdx++
	}

	logger.Log.Infof("[GeneratePrompts] ✅ Generated %d prompts across %d topics", len(prompts), tIdx)
	return prompts
}

func (s *promptService) generateLive(ctx context.Context, profile models.BrandProfile, topic models.Topic) ([]PromptSuggestion, error) {
	prompt := fmt.Sprintf(`Write %d questions a buyer might ask an AI assistant about "%s" in the %s market.

The questions should naturally surface vendors such as %s and its competitors (%s) without always naming them.
Label each question with one intent: Comparison, Discovery, Commercial or Informational.`,
		s.perTopic, topic.Name, profile.Industry, profile.Name, strings.Join(profile.CompetitorNames(), ", "))

	resp, err := s.responder.Respond(ctx, common.RespondRequest{
		Prompt:            prompt,
		SystemInstruction: "You write realistic search queries for AI answer engines.",
		SchemaName:        "prompt_suggestions",
		Schema:            GenerateSchema[PromptSuggestionsResponse](),
	})
	if err != nil {
		return nil, fmt.Errorf("prompt generation call failed: %w", err)
	}

	var parsed PromptSuggestionsResponse
	if err := common.DecodeJSON(resp.Response, &parsed); err != nil {
		return nil, err
	}

	out := make([]PromptSuggestion, 0, s.perTopic)
	for _, p := range parsed.Prompts {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		intent := models.Intent(p.Intent)
		if models.ValidateIntent(intent) != nil {
			intent = models.IntentCycle[len(out)%len(models.IntentCycle)]
		}
		out = append(out, PromptSuggestion{Text: text, Intent: string(intent)})
		if len(out) == s.perTopic {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no prompts in structured response: %w", common.ErrMalformedResponse)
	}
	return out, nil
}

func (s *promptService) defaultPrompts(profile models.BrandProfile, topic models.Topic) []PromptSuggestion {
	competitor := "competitors"
	if len(profile.Competitors) > 0 && profile.Competitors[0].Name != "" {
		competitor = profile.Competitors[0].Name
	}
	text := fmt.Sprintf("What are the top rated %s tools similar to %s that offer better %s?",
		profile.Industry, competitor, topic.Name)

	out := make([]PromptSuggestion, s.perTopic)
	for i := range out {
		out[i] = PromptSuggestion{
			Text:   text,
			Intent: string(models.IntentCycle[i%len(models.IntentCycle)]),
		}
	}
	return out
}
