package services

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
)

const (
	sentimentWindow = 100 // characters on each side of the first mention's start index
	rankBucketSize  = 200 // characters of answer text per rank position
	maxRank         = 5
)

type signalExtractor struct {
	positive []string
	negative []string
}

func NewSignalExtractor(policy *config.Policy) SignalExtractor {
	return &signalExtractor{
		positive: policy.SentimentWords.Positive,
		negative: policy.SentimentWords.Negative,
	}
}

func (s *signalExtractor) Extract(responseText, subjectBrand string, competitorNames []string, intent models.Intent) Signals {
	lower := strings.ToLower(responseText)

	signals := Signals{
		CompetitorsMentioned: []string{},
		Sentiment:            models.SentimentNeutral,
	}

	for _, name := range competitorNames {
		if containsFold(lower, name) {
			signals.CompetitorsMentioned = append(signals.CompetitorsMentioned, name)
		}
	}

	brand := strings.ToLower(strings.TrimSpace(subjectBrand))
	if brand == "" {
		return signals
	}
	idx := strings.Index(lower, brand)
	if idx < 0 {
		return signals
	}
	signals.BrandMentioned = true

	// Positions are in characters, not bytes
	runes := []rune(lower)
	pos := utf8.RuneCountInString(lower[:idx])
	brandEnd := pos + utf8.RuneCountInString(brand)
	start := max(0, pos-sentimentWindow)
	end := min(len(runes), pos+sentimentWindow)

	// The brand's own name never counts as vocabulary
	before := string(runes[start:pos])
	after := ""
	if brandEnd < end {
		after = string(runes[brandEnd:end])
	}
	head, tail := tokenize(before), tokenize(after)
	// Words cut by the window edges are not whole tokens
	if start > 0 && isWordRune(runes[start-1]) && len(head) > 0 && isWordRune(runes[start]) {
		head = head[1:]
	}
	if end < len(runes) && isWordRune(runes[end]) && len(tail) > 0 && isWordRune(runes[end-1]) {
		tail = tail[:len(tail)-1]
	}
	window := append(head, tail...)

	positive, negative := countWords(window, s.positive), countWords(window, s.negative)
	switch {
	case positive > negative:
		signals.Sentiment = models.SentimentPositive
	case negative > positive:
		signals.Sentiment = models.SentimentNegative
	}

	if intent.Ranked() {
		rank := min(maxRank, pos/rankBucketSize+1)
		signals.Rank = &rank
	}

	return signals
}

func containsFold(lowerText, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	return name != "" && strings.Contains(lowerText, name)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
}

// countWords counts whole-token occurrences of each vocabulary entry.
// Multi-word entries match as consecutive tokens.
func countWords(tokens []string, words []string) int {
	n := 0
	for _, w := range words {
		phrase := tokenize(w)
		if len(phrase) == 0 {
			continue
		}
		for i := 0; i+len(phrase) <= len(tokens); i++ {
			if slices.Equal(tokens[i:i+len(phrase)], phrase) {
				n++
			}
		}
	}
	return n
}
