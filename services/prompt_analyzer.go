package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/metrics"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
)

const analysisSystemInstruction = "You are a helpful assistant answering via web search grounding."

const (
	failedResponseText     = "Analysis failed due to search timeout."
	failedRecommendation   = "Retry analysis."
	recommendMissing       = "missing from results; create targeted content."
	recommendNegative      = "address negative sentiment."
	recommendNotCited      = "mentioned but not cited; improve structured markup."
	recommendStrongPresent = "strong visibility; reinforce with comparison content."
)

type promptAnalyzer struct {
	responder  providers.Responder
	extractor  SignalExtractor
	normalizer CitationNormalizer
	cfg        config.AnalysisConfig
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
}

// timeNow is swapped in tests
var timeNow = time.Now

func NewPromptAnalyzer(responder providers.Responder, extractor SignalExtractor, normalizer CitationNormalizer, cfg config.AnalysisConfig, m *metrics.Metrics) PromptAnalyzer {
	limit := rate.Inf
	if cfg.Pacing > 0 {
		limit = rate.Every(cfg.Pacing)
	}

	return &promptAnalyzer{
		responder:  responder,
		extractor:  extractor,
		normalizer: normalizer,
		cfg:        cfg,
		limiter:    rate.NewLimiter(limit, 1),
		metrics:    m,
	}
}

// AnalyzeAll analyzes the first MaxAnalyzedPrompts prompts and passes the rest
// through unchanged. The result has the same length and order as prompts.
func (a *promptAnalyzer) AnalyzeAll(ctx context.Context, prompts []models.PromptAnalysisResult, profile models.BrandProfile) []models.PromptAnalysisResult {
	results := make([]models.PromptAnalysisResult, len(prompts))
	copy(results, prompts)

	n := len(prompts)
	if a.cfg.MaxAnalyzedPrompts > 0 && a.cfg.MaxAnalyzedPrompts < n {
		n = a.cfg.MaxAnalyzedPrompts
	}

	workers := a.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	logger.Log.Infof("[AnalyzeAll] Analyzing %d of %d prompts for %s with %d worker(s)", n, len(prompts), profile.Name, workers)

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			results[i] = a.Analyze(ctx, prompts[i], profile)
			return nil
		})
	}
	g.Wait()

	return results
}

func (a *promptAnalyzer) Analyze(ctx context.Context, prompt models.PromptAnalysisResult, profile models.BrandProfile) models.PromptAnalysisResult {
	if err := a.limiter.Wait(ctx); err != nil {
		logger.Log.Warnf("[Analyze] Prompt %s not sent: %v", prompt.ID, err)
		return a.placeholder(prompt)
	}

	callCtx := ctx
	if a.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.cfg.CallTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := a.responder.Respond(callCtx, common.RespondRequest{
		Prompt:            prompt.Text,
		SystemInstruction: analysisSystemInstruction,
		SearchGrounding:   true,
		Entities:          profileEntities(profile),
	})
	a.metrics.RecordResponderCall(a.responder.GetProviderName(), time.Since(start))
	if err != nil {
		logger.Log.Warnf("[Analyze] Prompt %s failed: %v", prompt.ID, err)
		return a.placeholder(prompt)
	}

	signals := a.extractor.Extract(resp.Response, profile.Name, profile.CompetitorNames(), prompt.Intent)

	chunks := resp.GroundingChunks
	if len(chunks) == 0 {
		chunks = a.normalizer.ChunksFromText(resp.Response)
	}
	citations := a.normalizer.Normalize(chunks)

	result := prompt
	now := timeNow()
	result.Analyzed = true
	result.ResponseDate = &now
	result.Model = a.modelLabel(resp.Model)
	result.ResponseText = resp.Response
	result.BrandMentioned = signals.BrandMentioned
	result.CompetitorsMentioned = signals.CompetitorsMentioned
	result.Sentiment = signals.Sentiment
	result.Rank = signals.Rank
	result.Citations = citations
	result.Cost = resp.Cost
	result.Recommendation = a.recommend(signals, citations, profile)

	if signals.BrandMentioned {
		a.metrics.RecordPromptAnalyzed("mentioned")
	} else {
		a.metrics.RecordPromptAnalyzed("missing")
	}

	return result
}

func (a *promptAnalyzer) recommend(signals Signals, citations []models.Citation, profile models.BrandProfile) string {
	if !signals.BrandMentioned {
		return recommendMissing
	}
	if signals.Sentiment == models.SentimentNegative {
		return recommendNegative
	}
	for _, c := range citations {
		if a.normalizer.IsOwnSite(c, profile.Website) {
			return recommendStrongPresent
		}
	}
	return recommendNotCited
}

// placeholder is the degraded record for a prompt whose call failed
func (a *promptAnalyzer) placeholder(prompt models.PromptAnalysisResult) models.PromptAnalysisResult {
	a.metrics.RecordPromptAnalyzed("failed")

	result := prompt
	now := timeNow()
	result.Analyzed = true
	result.ResponseDate = &now
	result.Model = a.modelLabel("")
	result.ResponseText = failedResponseText
	result.BrandMentioned = false
	result.CompetitorsMentioned = []string{}
	result.Sentiment = models.SentimentNeutral
	result.Rank = nil
	result.Citations = []models.Citation{}
	result.Cost = 0
	result.Recommendation = failedRecommendation
	return result
}

func (a *promptAnalyzer) modelLabel(reported string) string {
	if a.cfg.ModelLabel != "" {
		return a.cfg.ModelLabel
	}
	if reported != "" {
		return reported
	}
	return a.responder.GetProviderName()
}

func profileEntities(profile models.BrandProfile) []string {
	names := make([]string, 0, len(profile.Competitors)+1)
	names = append(names, profile.Name)
	for _, c := range profile.Competitors {
		names = append(names, c.Name)
	}
	return names
}
