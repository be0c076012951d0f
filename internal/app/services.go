// Package app wires the service graph shared by the HTTP server and the MCP binary.
package app

import (
	"fmt"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/metrics"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers"
	"github.com/AI-Template-SDK/senso-geo-wizard/services"
)

type Services struct {
	Responder  providers.Responder
	Cost       services.CostService
	Extractor  services.SignalExtractor
	Normalizer services.CitationNormalizer
	Analyzer   services.PromptAnalyzer
	Aggregator services.AggregationService
	Analysis   services.AnalysisService
	Topics     services.TopicService
	Prompts    services.PromptService
	Drafting   services.DraftingService
	Export     services.ReportExportService
}

// NewServices builds every service around the configured responder.
// m may be nil.
func NewServices(cfg *config.Config, policy *config.Policy, m *metrics.Metrics) (*Services, error) {
	costService := services.NewCostService()

	responder, err := providers.NewResponder(cfg, costService)
	if err != nil {
		return nil, fmt.Errorf("failed to create responder: %w", err)
	}

	extractor := services.NewSignalExtractor(policy)
	normalizer := services.NewCitationNormalizer(policy)
	analyzer := services.NewPromptAnalyzer(responder, extractor, normalizer, cfg.Analysis, m)
	aggregator := services.NewAggregationService(policy)

	logger.Log.Infof("[App] Services ready (responder: %s, max analyzed prompts: %d, workers: %d)",
		responder.GetProviderName(), cfg.Analysis.MaxAnalyzedPrompts, cfg.Analysis.Workers)

	return &Services{
		Responder:  responder,
		Cost:       costService,
		Extractor:  extractor,
		Normalizer: normalizer,
		Analyzer:   analyzer,
		Aggregator: aggregator,
		Analysis:   services.NewAnalysisService(analyzer, aggregator, m),
		Topics:     services.NewTopicService(responder, m),
		Prompts:    services.NewPromptService(responder, cfg.Analysis, m),
		Drafting:   services.NewDraftingService(responder, m),
		Export:     services.NewReportExportService(),
	}, nil
}

// LoadPolicy reads the configured policy file, or the built-in tables
func LoadPolicy(cfg *config.Config) (*config.Policy, error) {
	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	if cfg.PolicyFile != "" {
		logger.Log.Infof("[App] Loaded policy from %s", cfg.PolicyFile)
	}
	return policy, nil
}
