package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/metrics"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
)

const suggestedTopicCount = 5

type topicService struct {
	responder providers.Responder
	metrics   *metrics.Metrics
}

func NewTopicService(responder providers.Responder, m *metrics.Metrics) TopicService {
	return &topicService{responder: responder, metrics: m}
}

// SuggestTopics asks the responder for topic ideas and falls back to the
// built-in defaults when the call fails or the answer cannot be used.
func (s *topicService) SuggestTopics(ctx context.Context, profile models.BrandProfile) []models.Topic {
	topics, err := s.suggestLive(ctx, profile)
	if err == nil {
		logger.Log.Infof("[SuggestTopics] ✅ %d topics suggested for %s", len(topics), profile.Name)
		return topics
	}

	switch {
	case errors.Is(err, common.ErrMalformedResponse):
		logger.Log.Warnf("[SuggestTopics] Unusable topic suggestions, using defaults: %v", err)
	case errors.Is(err, common.ErrServiceUnavailable):
		logger.Log.Warnf("[SuggestTopics] Responder unavailable, using defaults: %v", err)
	default:
		logger.Log.Warnf("[SuggestTopics] Topic suggestion failed, using defaults: %v", err)
	}
	s.metrics.RecordFallback("topics")
	return DefaultTopics(profile)
}

func (s *topicService) suggestLive(ctx context.Context, profile models.BrandProfile) ([]models.Topic, error) {
	prompt := fmt.Sprintf(`Suggest %d topics that buyers ask AI answer engines about when researching %s software.

Brand: %s (%s)
Competitors: %s

For each topic give a short name and a one-sentence justification of why it matters for AI search visibility.`,
		suggestedTopicCount, profile.Industry, profile.Name, profile.Website, strings.Join(profile.CompetitorNames(), ", "))

	resp, err := s.responder.Respond(ctx, common.RespondRequest{
		Prompt:            prompt,
		SystemInstruction: "You are a generative engine optimization strategist.",
		SchemaName:        "topic_suggestions",
		Schema:            GenerateSchema[TopicSuggestionsResponse](),
	})
	if err != nil {
		return nil, fmt.Errorf("topic suggestion call failed: %w", err)
	}

	var parsed TopicSuggestionsResponse
	if err := common.DecodeJSON(resp.Response, &parsed); err != nil {
		return nil, err
	}

	topics := make([]models.Topic, 0, suggestedTopicCount)
	for _, t := range parsed.Topics {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			continue
		}
		topics = append(topics, models.Topic{
			ID:            fmt.Sprintf("topic-%d", len(topics)+1),
			Name:          name,
			Selected:      true,
			Justification: strings.TrimSpace(t.Justification),
		})
		if len(topics) == suggestedTopicCount {
			break
		}
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("no topics in structured response: %w", common.ErrMalformedResponse)
	}
	return topics, nil
}

func (s *topicService) NewCustomTopic(name string) models.Topic {
	return models.Topic{
		ID:       "custom-" + uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Selected: true,
	}
}

// DefaultTopics is the deterministic topic set used when suggestion fails
func DefaultTopics(profile models.BrandProfile) []models.Topic {
	return []models.Topic{
		{
			ID:            "topic-1",
			Name:          fmt.Sprintf("%s Software Tools", profile.Industry),
			Selected:      true,
			Justification: fmt.Sprintf("High search volume for general %s solutions.", profile.Industry),
		},
		{
			ID:            "topic-2",
			Name:          fmt.Sprintf("%s vs Competitors", profile.Name),
			Selected:      true,
			Justification: "Direct brand comparison queries detected.",
		},
		{
			ID:            "topic-3",
			Name:          "Best Pricing & ROI",
			Selected:      true,
			Justification: "Commercial intent signals found on pricing pages.",
		},
		{
			ID:            "topic-4",
			Name:          "Integration Capabilities",
			Selected:      true,
			Justification: "Users frequently ask about API and integrations.",
		},
		{
			ID:            "topic-5",
			Name:          "User Reviews & Sentiment",
			Selected:      true,
			Justification: "Aggregated from G2, Capterra, and Reddit discussions.",
		},
	}
}
