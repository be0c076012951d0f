package services

import (
	"context"
	"fmt"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/metrics"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
)

type analysisService struct {
	analyzer   PromptAnalyzer
	aggregator AggregationService
	metrics    *metrics.Metrics
}

func NewAnalysisService(analyzer PromptAnalyzer, aggregator AggregationService, m *metrics.Metrics) AnalysisService {
	return &analysisService{analyzer: analyzer, aggregator: aggregator, metrics: m}
}

// AnalyzePrompts returns an error only when ctx is done. Individual prompt
// failures become placeholder results.
func (s *analysisService) AnalyzePrompts(ctx context.Context, profile models.BrandProfile, prompts []models.PromptAnalysisResult) ([]models.PromptAnalysisResult, error) {
	analyzed := s.analyzer.AnalyzeAll(ctx, prompts, profile)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}
	return analyzed, nil
}

func (s *analysisService) BuildReport(profile models.BrandProfile, topics []models.Topic, prompts []models.PromptAnalysisResult) *models.AnalysisReport {
	report := s.aggregator.Aggregate(profile, topics, prompts)
	report.GeneratedAt = timeNow().UTC()
	s.metrics.RecordReportGenerated()

	logger.Log.Infof("[BuildReport] 📊 Report for %s: overall score %d, %d citation sources, %d content gaps",
		profile.Name, report.OverallScore, len(report.Citations), len(report.ContentGaps))
	return report
}

func (s *analysisService) RunAnalysis(ctx context.Context, profile models.BrandProfile, topics []models.Topic, prompts []models.PromptAnalysisResult) (*models.AnalysisReport, error) {
	analyzed, err := s.AnalyzePrompts(ctx, profile, prompts)
	if err != nil {
		return nil, err
	}
	return s.BuildReport(profile, topics, analyzed), nil
}
