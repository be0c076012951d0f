package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
)

func TestDefaultPolicyTables(t *testing.T) {
	p := config.DefaultPolicy()

	if len(p.SentimentWords.Positive) != 10 {
		t.Errorf("Expected 10 positive words, got %d", len(p.SentimentWords.Positive))
	}
	if len(p.SentimentWords.Negative) != 10 {
		t.Errorf("Expected 10 negative words, got %d", len(p.SentimentWords.Negative))
	}
	if len(p.CitationDenylist) != 3 {
		t.Errorf("Expected 3 denylist entries, got %d", len(p.CitationDenylist))
	}

	// mutating one copy must not leak into the next
	p.SentimentWords.Positive[0] = "changed"
	if config.DefaultPolicy().SentimentWords.Positive[0] != "best" {
		t.Error("DefaultPolicy shares backing arrays between calls")
	}
}

func TestParsePolicyOverridesOnlyGivenSections(t *testing.T) {
	yamlDoc := []byte(`
sentiment_words:
  positive: [" Stellar ", "solid"]
authority:
  high: [wikipedia.org]
`)

	p, err := config.ParsePolicy(yamlDoc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(p.SentimentWords.Positive) != 2 || p.SentimentWords.Positive[0] != "stellar" {
		t.Errorf("Positive words not overridden/normalized: %v", p.SentimentWords.Positive)
	}
	if len(p.SentimentWords.Negative) != 10 {
		t.Errorf("Negative words should keep defaults, got %v", p.SentimentWords.Negative)
	}
	if !p.IsHighAuthority("wikipedia.org") {
		t.Error("Expected wikipedia.org to be high authority")
	}
	if p.IsHighAuthority("g2.com") {
		t.Error("g2.com should no longer be high authority after override")
	}
}

func TestParsePolicyRejectsBadYAML(t *testing.T) {
	if _, err := config.ParsePolicy([]byte("sentiment_words: [unclosed")); err == nil {
		t.Error("Expected parse error for malformed YAML")
	}
}

func TestLoadPolicy(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		p, err := config.LoadPolicy("")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !p.IsHighAuthority("reddit.com") {
			t.Error("Expected default allowlist")
		}
	})

	t.Run("missing file errors", func(t *testing.T) {
		if _, err := config.LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("file on disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		if err := os.WriteFile(path, []byte("citation_denylist: [bing.com]\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		p, err := config.LoadPolicy(path)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(p.CitationDenylist) != 1 || p.CitationDenylist[0] != "bing.com" {
			t.Errorf("Unexpected denylist: %v", p.CitationDenylist)
		}
	})
}

func TestIsHighAuthority(t *testing.T) {
	p := config.DefaultPolicy()
	tests := []struct {
		source string
		want   bool
	}{
		{"g2.com", true},
		{"G2.com", true},
		{"news.techcrunch.com", true},
		{"notg2.com", false},
		{"medium.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if got := p.IsHighAuthority(tt.source); got != tt.want {
				t.Errorf("IsHighAuthority(%q) = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}
