// services/interfaces.go
package services

import (
	"context"

	"github.com/invopop/jsonschema"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
)

// Signals are the visibility facts read from one answer
type Signals struct {
	BrandMentioned       bool             `json:"brandMentioned"`
	CompetitorsMentioned []string         `json:"competitorsMentioned"`
	Sentiment            models.Sentiment `json:"sentiment"`
	Rank                 *int             `json:"rank"`
}

// SignalExtractor reads mention, sentiment and rank signals from free text
type SignalExtractor interface {
	Extract(responseText, subjectBrand string, competitorNames []string, intent models.Intent) Signals
}

// CitationNormalizer turns raw grounding metadata into clean citations
type CitationNormalizer interface {
	Normalize(chunks []common.GroundingChunk) []models.Citation
	// ChunksFromText recovers citations from URLs written inline in an answer,
	// for engines that do not return grounding metadata.
	ChunksFromText(text string) []common.GroundingChunk
	IsOwnSite(citation models.Citation, website string) bool
}

// PromptAnalyzer runs prompts against the answer engine. It never fails:
// errors and timeouts produce placeholder results.
type PromptAnalyzer interface {
	Analyze(ctx context.Context, prompt models.PromptAnalysisResult, profile models.BrandProfile) models.PromptAnalysisResult
	AnalyzeAll(ctx context.Context, prompts []models.PromptAnalysisResult, profile models.BrandProfile) []models.PromptAnalysisResult
}

// AggregationService folds analyzed prompts into a report. Pure, never fails.
type AggregationService interface {
	Aggregate(profile models.BrandProfile, topics []models.Topic, prompts []models.PromptAnalysisResult) *models.AnalysisReport
}

type TopicService interface {
	SuggestTopics(ctx context.Context, profile models.BrandProfile) []models.Topic
	NewCustomTopic(name string) models.Topic
}

type PromptService interface {
	GeneratePrompts(ctx context.Context, profile models.BrandProfile, topics []models.Topic) []models.PromptAnalysisResult
}

// DraftingService writes content briefs and outreach emails. On responder
// failure it returns a template draft instead of an error.
type DraftingService interface {
	DraftContent(ctx context.Context, topic, contentType, brand string, tone models.ContentTone) string
	DraftEmail(ctx context.Context, site, contact, angle, brand string, tone models.ContentTone) string
}

type ReportExportService interface {
	ExportReport(profile models.BrandProfile, report *models.AnalysisReport) ([]byte, error)
}

type CostService interface {
	CalculateCost(provider, model string, inputTokens, outputTokens int, webSearch bool) float64
}

// AnalysisService runs the analyze then aggregate pipeline. The two halves
// are exposed separately so durable workflows can checkpoint between them.
type AnalysisService interface {
	AnalyzePrompts(ctx context.Context, profile models.BrandProfile, prompts []models.PromptAnalysisResult) ([]models.PromptAnalysisResult, error)
	BuildReport(profile models.BrandProfile, topics []models.Topic, prompts []models.PromptAnalysisResult) *models.AnalysisReport
	RunAnalysis(ctx context.Context, profile models.BrandProfile, topics []models.Topic, prompts []models.PromptAnalysisResult) (*models.AnalysisReport, error)
}

// Structured output types for generation calls
type TopicSuggestionsResponse struct {
	Topics []TopicSuggestion `json:"topics"`
}

type TopicSuggestion struct {
	Name          string `json:"name"`
	Justification string `json:"justification"`
}

type PromptSuggestionsResponse struct {
	Prompts []PromptSuggestion `json:"prompts"`
}

type PromptSuggestion struct {
	Text   string `json:"text"`
	Intent string `json:"intent"`
}

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var zero T
	schema := reflector.Reflect(zero)

	// Convert to the format expected by OpenAI
	result := map[string]interface{}{
		"type":       "object",
		"properties": schema.Properties,
		"required":   schema.Required,
	}

	if schema.AdditionalProperties != nil {
		result["additionalProperties"] = false
	}

	return result
}
