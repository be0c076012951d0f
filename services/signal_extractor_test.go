package services_test

import (
	"os"
	"strings"
	"testing"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
	"github.com/AI-Template-SDK/senso-geo-wizard/services"
)

func TestMain(m *testing.M) {
	logger.Silence()
	os.Exit(m.Run())
}

func newExtractor() services.SignalExtractor {
	return services.NewSignalExtractor(config.DefaultPolicy())
}

func TestExtractMentionIsCaseInsensitive(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		mentioned bool
	}{
		{"exact", "Acme is a CRM.", true},
		{"lowercase", "we compared acme and others", true},
		{"uppercase", "ACME WINS", true},
		{"absent", "Beta and Gamma lead the market.", false},
		{"empty text", "", false},
	}

	e := newExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text, "Acme", nil, models.IntentCommercial)
			if got.BrandMentioned != tt.mentioned {
				t.Errorf("Expected mentioned=%v, got %v", tt.mentioned, got.BrandMentioned)
			}
		})
	}
}

func TestExtractNotMentionedIsNeutralWithoutRank(t *testing.T) {
	e := newExtractor()
	for _, intent := range models.IntentCycle {
		got := e.Extract("The best, excellent, great tools are Beta and Gamma.", "Acme", []string{"Beta"}, intent)
		if got.BrandMentioned {
			t.Fatalf("%s: unexpected mention", intent)
		}
		if got.Sentiment != models.SentimentNeutral {
			t.Errorf("%s: expected Neutral, got %s", intent, got.Sentiment)
		}
		if got.Rank != nil {
			t.Errorf("%s: expected nil rank, got %d", intent, *got.Rank)
		}
	}
}

func TestExtractSentimentWindow(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected models.Sentiment
	}{
		{"positive", "Acme is the best and most recommended option.", models.SentimentPositive},
		{"negative", "Acme is slow and expensive, users report a lack of support.", models.SentimentNegative},
		{"balanced", "Acme is great but expensive.", models.SentimentNeutral},
		{"no vocabulary", "Acme exists.", models.SentimentNeutral},
		{"before mention", "Widely called the best option, Acme ships monthly.", models.SentimentPositive},
		{"outside window", "Acme" + strings.Repeat(" ", 150) + "excellent", models.SentimentNeutral},
	}

	e := newExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text, "Acme", nil, models.IntentInformational)
			if got.Sentiment != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got.Sentiment)
			}
		})
	}
}

func TestExtractSentimentMatchesWholeWords(t *testing.T) {
	tests := []struct {
		name     string
		brand    string
		text     string
		expected models.Sentiment
	}{
		{"brand containing a vocabulary word", "Toptal", "Toptal is a staffing marketplace.", models.SentimentNeutral},
		{"brand that is a vocabulary phrase", "Best Buy", "Best Buy sells laptops.", models.SentimentNeutral},
		{"competitor names containing vocabulary", "Acme", "Acme integrates with Blackbaud and HardHat.", models.SentimentNeutral},
		{"ordinary words containing vocabulary", "Acme", "Acme runs on desktop, laptop and hardware.", models.SentimentNeutral},
		{"punctuation around words", "Acme", "Acme: (best), \"recommended\"!", models.SentimentPositive},
		{"repeated word counts twice", "Acme", "Acme is great but slow, slow.", models.SentimentNegative},
	}

	e := newExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text, tt.brand, nil, models.IntentInformational)
			if !got.BrandMentioned {
				t.Fatal("Expected the brand to be mentioned")
			}
			if got.Sentiment != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got.Sentiment)
			}
		})
	}
}

func TestExtractSentimentWindowBounds(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected models.Sentiment
	}{
		// window covers 100 characters after the mention's start index
		{"inside after start", "Acme" + strings.Repeat(" ", 90) + "best", models.SentimentPositive},
		{"beyond 100 after start", "Acme" + strings.Repeat(" ", 97) + "best", models.SentimentNeutral},
		{"100 before start", "best" + strings.Repeat(" ", 95) + "Acme", models.SentimentPositive},
		{"beyond 100 before start", "best" + strings.Repeat(" ", 97) + "Acme", models.SentimentNeutral},
		// "desktop" cut to "top" by the window edge
		{"cut word at leading edge", "desktop" + strings.Repeat(" ", 97) + "Acme", models.SentimentNeutral},
		{"cut word at trailing edge", "Acme" + strings.Repeat(" ", 92) + "hardware", models.SentimentNeutral},
	}

	e := newExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text, "Acme", nil, models.IntentInformational)
			if got.Sentiment != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got.Sentiment)
			}
		})
	}
}

func TestExtractSentimentUsesFirstOccurrence(t *testing.T) {
	text := "Acme is buggy." + strings.Repeat(" ", 300) + "Acme is the best, excellent, great."
	got := newExtractor().Extract(text, "Acme", nil, models.IntentInformational)
	if got.Sentiment != models.SentimentNegative {
		t.Errorf("Expected Negative from the first mention, got %s", got.Sentiment)
	}
}

func TestExtractRank(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		intent   models.Intent
		expected int // 0 means nil
	}{
		{"start commercial", 0, models.IntentCommercial, 1},
		{"second bucket discovery", 250, models.IntentDiscovery, 2},
		{"third bucket", 450, models.IntentCommercial, 3},
		{"capped at five", 5000, models.IntentDiscovery, 5},
		{"informational has no rank", 0, models.IntentInformational, 0},
		{"comparison has no rank", 0, models.IntentComparison, 0},
	}

	e := newExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("x", tt.offset) + " Acme"
			if tt.offset > 0 {
				text = strings.Repeat("x", tt.offset-1) + " Acme"
			}
			got := e.Extract(text, "Acme", nil, tt.intent)

			if tt.expected == 0 {
				if got.Rank != nil {
					t.Errorf("Expected nil rank, got %d", *got.Rank)
				}
				return
			}
			if got.Rank == nil {
				t.Fatal("Expected a rank, got nil")
			}
			if *got.Rank != tt.expected {
				t.Errorf("Expected rank %d, got %d", tt.expected, *got.Rank)
			}
			if *got.Rank < 1 || *got.Rank > 5 {
				t.Errorf("Rank %d outside [1,5]", *got.Rank)
			}
		})
	}
}

func TestExtractCompetitors(t *testing.T) {
	e := newExtractor()
	got := e.Extract("Top picks: beta, GAMMA and Acme.", "Acme", []string{"Beta", "Gamma", "Delta", ""}, models.IntentComparison)

	if len(got.CompetitorsMentioned) != 2 {
		t.Fatalf("Expected 2 competitors, got %v", got.CompetitorsMentioned)
	}
	if got.CompetitorsMentioned[0] != "Beta" || got.CompetitorsMentioned[1] != "Gamma" {
		t.Errorf("Expected original competitor names in input order, got %v", got.CompetitorsMentioned)
	}
}

func TestExtractEmptyBrandIsNeverMentioned(t *testing.T) {
	got := newExtractor().Extract("anything at all", "  ", nil, models.IntentCommercial)
	if got.BrandMentioned || got.Rank != nil {
		t.Errorf("Expected no mention for an empty brand, got %+v", got)
	}
}

func TestExtractUsesPolicyWords(t *testing.T) {
	policy, err := config.ParsePolicy([]byte("sentiment_words:\n  positive: [stellar]\n  negative: [meh]\n"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	e := services.NewSignalExtractor(policy)

	if got := e.Extract("Acme is stellar", "Acme", nil, models.IntentInformational); got.Sentiment != models.SentimentPositive {
		t.Errorf("Expected Positive from custom word, got %s", got.Sentiment)
	}
	if got := e.Extract("Acme is the best", "Acme", nil, models.IntentInformational); got.Sentiment != models.SentimentNeutral {
		t.Errorf("Expected default words to be replaced, got %s", got.Sentiment)
	}
}
