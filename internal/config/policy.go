package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy holds the classification tables used by signal extraction, citation
// normalization and aggregation. Every table can be overridden from YAML.
type Policy struct {
	SentimentWords struct {
		Positive []string `yaml:"positive"`
		Negative []string `yaml:"negative"`
	} `yaml:"sentiment_words"`

	// Entries are matched against "host" or "host/path" of a citation URL.
	CitationDenylist []string `yaml:"citation_denylist"`

	Authority struct {
		High []string `yaml:"high"`
	} `yaml:"authority"`
}

var defaultPositiveWords = []string{
	"best", "excellent", "great", "top", "leader", "efficient", "robust", "recommended", "love", "perfect",
}

var defaultNegativeWords = []string{
	"slow", "expensive", "hard", "difficult", "buggy", "crash", "bad", "worst", "avoid", "lack",
}

var defaultCitationDenylist = []string{
	"vertexaisearch.cloud.google.com",
	"google.com/search",
	"googleusercontent.com",
}

var defaultHighAuthority = []string{
	"g2.com", "capterra.com", "forbes.com", "techcrunch.com", "linkedin.com", "reddit.com",
}

// DefaultPolicy returns the built-in tables
func DefaultPolicy() *Policy {
	p := &Policy{}
	p.SentimentWords.Positive = append([]string(nil), defaultPositiveWords...)
	p.SentimentWords.Negative = append([]string(nil), defaultNegativeWords...)
	p.CitationDenylist = append([]string(nil), defaultCitationDenylist...)
	p.Authority.High = append([]string(nil), defaultHighAuthority...)
	return p
}

// LoadPolicy reads a YAML policy file. An empty path yields DefaultPolicy.
// Sections absent from the file keep their defaults.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes YAML policy tables on top of the defaults
func ParsePolicy(data []byte) (*Policy, error) {
	var loaded Policy
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}

	p := DefaultPolicy()
	if len(loaded.SentimentWords.Positive) > 0 {
		p.SentimentWords.Positive = normalizeList(loaded.SentimentWords.Positive)
	}
	if len(loaded.SentimentWords.Negative) > 0 {
		p.SentimentWords.Negative = normalizeList(loaded.SentimentWords.Negative)
	}
	if len(loaded.CitationDenylist) > 0 {
		p.CitationDenylist = normalizeList(loaded.CitationDenylist)
	}
	if len(loaded.Authority.High) > 0 {
		p.Authority.High = normalizeList(loaded.Authority.High)
	}
	return p, nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsHighAuthority reports whether source (a bare host) is on the allowlist.
// Subdomains of an allowlisted domain count as well.
func (p *Policy) IsHighAuthority(source string) bool {
	source = strings.ToLower(source)
	for _, d := range p.Authority.High {
		if source == d || strings.HasSuffix(source, "."+d) {
			return true
		}
	}
	return false
}
