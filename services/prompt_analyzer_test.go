package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/testutil"
	"github.com/AI-Template-SDK/senso-geo-wizard/services"
)

func newAnalyzer(responder providers.Responder, cfg config.AnalysisConfig) services.PromptAnalyzer {
	policy := config.DefaultPolicy()
	return services.NewPromptAnalyzer(responder,
		services.NewSignalExtractor(policy),
		services.NewCitationNormalizer(policy),
		cfg, nil)
}

func analysisConfig() config.AnalysisConfig {
	return testutil.SampleConfig().Analysis
}

func TestAnalyzeRecommendationTable(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		chunks   []common.GroundingChunk
		expected string
	}{
		{
			name:     "not mentioned",
			text:     "Beta is the best CRM.",
			chunks:   []common.GroundingChunk{testutil.Chunk("https://www.acme.com/", "Acme")},
			expected: "missing from results; create targeted content.",
		},
		{
			name:     "negative sentiment",
			text:     "Acme is slow and buggy.",
			chunks:   []common.GroundingChunk{testutil.Chunk("https://www.acme.com/", "Acme")},
			expected: "address negative sentiment.",
		},
		{
			name:     "not cited",
			text:     "Acme is a great CRM.",
			chunks:   []common.GroundingChunk{testutil.Chunk("https://www.g2.com/crm", "G2")},
			expected: "mentioned but not cited; improve structured markup.",
		},
		{
			name:     "cited on own site",
			text:     "Acme is a great CRM.",
			chunks:   []common.GroundingChunk{testutil.Chunk("https://docs.acme.com/features", "Docs")},
			expected: "strong visibility; reinforce with comparison content.",
		},
	}

	profile := testutil.SampleProfile()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAnalyzer(testutil.TextResponder(tt.text, tt.chunks...), analysisConfig())
			got := a.Analyze(context.Background(), testutil.SamplePrompt("p1", "topic-1", models.IntentCommercial), profile)

			if got.Recommendation != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got.Recommendation)
			}
			if !got.Analyzed || got.ResponseDate == nil {
				t.Error("Expected the result to be marked analyzed with a response date")
			}
			if got.ResponseText != tt.text {
				t.Errorf("Expected response text to be kept, got %q", got.ResponseText)
			}
		})
	}
}

func TestAnalyzeSendsGroundedRequest(t *testing.T) {
	responder := testutil.TextResponder("Acme")
	a := newAnalyzer(responder, analysisConfig())

	prompt := testutil.SamplePrompt("p1", "topic-1", models.IntentDiscovery)
	a.Analyze(context.Background(), prompt, testutil.SampleProfile())

	reqs := responder.Requests()
	if len(reqs) != 1 {
		t.Fatalf("Expected 1 request, got %d", len(reqs))
	}
	if reqs[0].Prompt != prompt.Text {
		t.Errorf("Expected prompt text to be sent, got %q", reqs[0].Prompt)
	}
	if !reqs[0].SearchGrounding {
		t.Error("Expected search grounding to be enabled")
	}
	if reqs[0].SystemInstruction != "You are a helpful assistant answering via web search grounding." {
		t.Errorf("Unexpected system instruction: %q", reqs[0].SystemInstruction)
	}
	if got := strings.Join(reqs[0].Entities, ","); got != "Acme,Beta" {
		t.Errorf("Expected brand and competitor hints, got %q", got)
	}
}

func TestAnalyzeFailureProducesPlaceholder(t *testing.T) {
	errs := []error{
		fmt.Errorf("network: %w", common.ErrServiceUnavailable),
		fmt.Errorf("parse: %w", common.ErrMalformedResponse),
		errors.New("anything else"),
	}

	for _, err := range errs {
		t.Run(err.Error(), func(t *testing.T) {
			a := newAnalyzer(testutil.FailingResponder(err), analysisConfig())
			got := a.Analyze(context.Background(), testutil.SamplePrompt("p1", "topic-1", models.IntentCommercial), testutil.SampleProfile())
			assertPlaceholder(t, got)
		})
	}
}

func TestAnalyzeTimeoutProducesPlaceholder(t *testing.T) {
	slow := &testutil.MockResponder{
		RespondFunc: func(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error) {
			<-ctx.Done()
			return nil, fmt.Errorf("%v: %w", ctx.Err(), common.ErrServiceUnavailable)
		},
	}
	cfg := analysisConfig()
	cfg.CallTimeout = 20 * time.Millisecond

	start := time.Now()
	got := newAnalyzer(slow, cfg).Analyze(context.Background(), testutil.SamplePrompt("p1", "topic-1", models.IntentCommercial), testutil.SampleProfile())
	if time.Since(start) > time.Second {
		t.Error("Expected the call timeout to bound the call")
	}
	assertPlaceholder(t, got)
}

func assertPlaceholder(t *testing.T, got models.PromptAnalysisResult) {
	t.Helper()
	if got.ResponseText != "Analysis failed due to search timeout." {
		t.Errorf("Unexpected response text: %q", got.ResponseText)
	}
	if got.Recommendation != "Retry analysis." {
		t.Errorf("Unexpected recommendation: %q", got.Recommendation)
	}
	if got.BrandMentioned || len(got.CompetitorsMentioned) != 0 || len(got.Citations) != 0 {
		t.Errorf("Expected empty signals, got %+v", got)
	}
	if got.Sentiment != models.SentimentNeutral {
		t.Errorf("Expected Neutral, got %s", got.Sentiment)
	}
	if got.Rank != nil {
		t.Errorf("Expected nil rank, got %d", *got.Rank)
	}
	if !got.Analyzed {
		t.Error("Expected placeholder to count as analyzed")
	}
}

func TestAnalyzeAllTruncatesAndPreservesLength(t *testing.T) {
	var prompts []models.PromptAnalysisResult
	for i := 0; i < 12; i++ {
		prompts = append(prompts, testutil.SamplePrompt(fmt.Sprintf("p%d", i), "topic-1", models.IntentCommercial))
	}

	responder := testutil.TextResponder("Acme and Beta are popular.")
	cfg := analysisConfig()
	cfg.MaxAnalyzedPrompts = 10

	got := newAnalyzer(responder, cfg).AnalyzeAll(context.Background(), prompts, testutil.SampleProfile())

	if len(got) != len(prompts) {
		t.Fatalf("Expected %d results, got %d", len(prompts), len(got))
	}
	if responder.CallCount() != 10 {
		t.Errorf("Expected 10 calls, got %d", responder.CallCount())
	}
	for i, p := range got {
		if p.ID != prompts[i].ID {
			t.Errorf("Result %d out of order: %s", i, p.ID)
		}
		if i < 10 && !p.Analyzed {
			t.Errorf("Expected prompt %d to be analyzed", i)
		}
		if i >= 10 && p.Analyzed {
			t.Errorf("Expected prompt %d to pass through", i)
		}
	}
	if prompts[0].Analyzed {
		t.Error("Input prompts must not be modified")
	}
}

func TestAnalyzeAllAllFailuresKeepLength(t *testing.T) {
	prompts := []models.PromptAnalysisResult{
		testutil.SamplePrompt("a", "topic-1", models.IntentCommercial),
		testutil.SamplePrompt("b", "topic-2", models.IntentInformational),
		testutil.SamplePrompt("c", "topic-2", models.IntentDiscovery),
	}

	got := newAnalyzer(testutil.FailingResponder(common.ErrServiceUnavailable), analysisConfig()).
		AnalyzeAll(context.Background(), prompts, testutil.SampleProfile())

	if len(got) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(got))
	}
	for _, p := range got {
		assertPlaceholder(t, p)
	}
}

func TestAnalyzeAllPacesCalls(t *testing.T) {
	prompts := []models.PromptAnalysisResult{
		testutil.SamplePrompt("a", "topic-1", models.IntentCommercial),
		testutil.SamplePrompt("b", "topic-1", models.IntentCommercial),
		testutil.SamplePrompt("c", "topic-1", models.IntentCommercial),
	}
	cfg := analysisConfig()
	cfg.Pacing = 30 * time.Millisecond

	start := time.Now()
	newAnalyzer(testutil.TextResponder("Acme"), cfg).AnalyzeAll(context.Background(), prompts, testutil.SampleProfile())

	if elapsed := time.Since(start); elapsed < 55*time.Millisecond {
		t.Errorf("Expected at least two pacing intervals, took %v", elapsed)
	}
}

func TestAnalyzeAllWithWorkerPoolKeepsOrder(t *testing.T) {
	var prompts []models.PromptAnalysisResult
	for i := 0; i < 8; i++ {
		p := testutil.SamplePrompt(fmt.Sprintf("p%d", i), "topic-1", models.IntentCommercial)
		p.Text = fmt.Sprintf("question %d", i)
		prompts = append(prompts, p)
	}

	echo := &testutil.MockResponder{
		RespondFunc: func(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error) {
			time.Sleep(5 * time.Millisecond)
			return &common.AIResponse{Response: "Acme answers " + req.Prompt}, nil
		},
	}
	cfg := analysisConfig()
	cfg.Workers = 4

	got := newAnalyzer(echo, cfg).AnalyzeAll(context.Background(), prompts, testutil.SampleProfile())
	for i, p := range got {
		if !strings.HasSuffix(p.ResponseText, prompts[i].Text) {
			t.Errorf("Result %d carries the wrong answer: %q", i, p.ResponseText)
		}
	}
}

func TestAnalyzeFallsBackToInlineURLs(t *testing.T) {
	a := newAnalyzer(testutil.TextResponder("Acme is great. Source: https://www.acme.com/pricing"), analysisConfig())
	got := a.Analyze(context.Background(), testutil.SamplePrompt("p1", "topic-1", models.IntentCommercial), testutil.SampleProfile())

	if len(got.Citations) != 1 || got.Citations[0].Source != "acme.com" {
		t.Fatalf("Expected citation recovered from text, got %+v", got.Citations)
	}
	if got.Recommendation != "strong visibility; reinforce with comparison content." {
		t.Errorf("Unexpected recommendation: %q", got.Recommendation)
	}
}

func TestAnalyzeModelLabel(t *testing.T) {
	responder := &testutil.MockResponder{
		Name: "gemini",
		RespondFunc: func(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error) {
			return &common.AIResponse{Response: "Acme", Model: "gemini-2.5-flash"}, nil
		},
	}
	prompt := testutil.SamplePrompt("p1", "topic-1", models.IntentCommercial)

	got := newAnalyzer(responder, analysisConfig()).Analyze(context.Background(), prompt, testutil.SampleProfile())
	if got.Model != "gemini-2.5-flash" {
		t.Errorf("Expected reported model, got %q", got.Model)
	}

	cfg := analysisConfig()
	cfg.ModelLabel = "Gemini (Search)"
	got = newAnalyzer(responder, cfg).Analyze(context.Background(), prompt, testutil.SampleProfile())
	if got.Model != "Gemini (Search)" {
		t.Errorf("Expected configured label, got %q", got.Model)
	}
}
