// internal/models/models.go
package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Intent classifies what a search-style prompt is trying to find out
type Intent string

const (
	IntentComparison    Intent = "Comparison"
	IntentDiscovery     Intent = "Discovery"
	IntentCommercial    Intent = "Commercial"
	IntentInformational Intent = "Informational"
)

// IntentCycle is the order intents are assigned to generated prompts
var IntentCycle = []Intent{IntentComparison, IntentDiscovery, IntentCommercial, IntentInformational}

var validIntents = map[Intent]bool{
	IntentComparison:    true,
	IntentDiscovery:     true,
	IntentCommercial:    true,
	IntentInformational: true,
}

// ValidateIntent returns an error if the intent is not recognized.
func ValidateIntent(i Intent) error {
	if !validIntents[i] {
		return fmt.Errorf("invalid intent %q: must be one of: Comparison, Discovery, Commercial, Informational", i)
	}
	return nil
}

// Ranked reports whether answers to this intent carry a position signal
func (i Intent) Ranked() bool {
	return i == IntentCommercial || i == IntentDiscovery
}

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

type DomainAuthority string

const (
	AuthorityHigh   DomainAuthority = "High"
	AuthorityMedium DomainAuthority = "Medium"
	AuthorityLow    DomainAuthority = "Low"
)

// ContentTone is the voice requested for drafted content and outreach
type ContentTone string

const (
	ToneProfessional   ContentTone = "Professional"
	ToneConversational ContentTone = "Conversational"
	ToneAuthoritative  ContentTone = "Authoritative"
	TonePersuasive     ContentTone = "Persuasive"
	ToneWitty          ContentTone = "Witty"
)

var validTones = map[ContentTone]bool{
	ToneProfessional:   true,
	ToneConversational: true,
	ToneAuthoritative:  true,
	TonePersuasive:     true,
	ToneWitty:          true,
}

// ValidateTone returns an error if the tone is not recognized.
func ValidateTone(t ContentTone) error {
	if !validTones[t] {
		return fmt.Errorf("invalid tone %q: must be one of: Professional, Conversational, Authoritative, Persuasive, Witty", t)
	}
	return nil
}

type Competitor struct {
	Name    string `json:"name" validate:"required,max=200"`
	Website string `json:"website" validate:"required,max=2048"`
}

// BrandProfile is the subject of a wizard run. It is not modified after submission.
type BrandProfile struct {
	Name        string       `json:"name" validate:"required,max=200"`
	Website     string       `json:"website" validate:"required,max=2048"`
	Industry    string       `json:"industry" validate:"required,max=200"`
	Competitors []Competitor `json:"competitors" validate:"min=1,max=5,dive"`
}

func (p BrandProfile) CompetitorNames() []string {
	names := make([]string, 0, len(p.Competitors))
	for _, c := range p.Competitors {
		names = append(names, c.Name)
	}
	return names
}

// Host returns the profile website's hostname without a leading "www.".
// Schemeless input such as "acme.com" is accepted.
func (p BrandProfile) Host() string {
	return HostOf(p.Website)
}

// HostOf extracts a lowercase hostname from a loosely formatted website value
func HostOf(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}
	u, err := url.Parse(website)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

type Topic struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Selected      bool   `json:"selected"`
	Justification string `json:"justification,omitempty"`
}

type Citation struct {
	Source string `json:"source"`
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
}

// PromptAnalysisResult is a generated prompt and, once analyzed, the signals
// extracted from the answer engine's response to it.
type PromptAnalysisResult struct {
	ID       string `json:"id"`
	TopicID  string `json:"topicId"`
	Topic    string `json:"topic,omitempty"` // display name, filled by ResolveTopicNames
	Text     string `json:"text"`
	Intent   Intent `json:"intent"`
	IsEdited bool   `json:"isEdited,omitempty"`

	Analyzed             bool       `json:"analyzed"`
	ResponseDate         *time.Time `json:"responseDate,omitempty"`
	Model                string     `json:"model,omitempty"`
	ResponseText         string     `json:"responseText,omitempty"`
	BrandMentioned       bool       `json:"brandMentioned"`
	CompetitorsMentioned []string   `json:"competitorsMentioned"`
	Sentiment            Sentiment  `json:"sentiment,omitempty"`
	Rank                 *int       `json:"rank"`
	Citations            []Citation `json:"citations"`
	Recommendation       string     `json:"recommendation,omitempty"`
	Cost                 float64    `json:"cost,omitempty"`
}

// ResolveTopicNames returns copies of prompts with Topic set from topics by ID.
// Prompts whose topic no longer exists keep an empty name.
func ResolveTopicNames(prompts []PromptAnalysisResult, topics []Topic) []PromptAnalysisResult {
	names := make(map[string]string, len(topics))
	for _, t := range topics {
		names[t.ID] = t.Name
	}

	out := make([]PromptAnalysisResult, len(prompts))
	for i, p := range prompts {
		p.Topic = names[p.TopicID]
		out[i] = p
	}
	return out
}

type ShareOfVoice struct {
	Brand            string  `json:"brand"`
	Score            int     `json:"score"`
	Sentiment        float64 `json:"sentiment"`
	Mentions         int     `json:"mentions"`
	Trend            []int   `json:"trend"`
	PositiveMentions int     `json:"positiveMentions"`
	NegativeMentions int     `json:"negativeMentions"`
	WinRate          int     `json:"winRate"`
}

type TopicScore struct {
	TopicID       string `json:"topicId"`
	Topic         string `json:"topic"`
	BrandScore    int    `json:"brandScore"`
	CompetitorAvg int    `json:"competitorAvg"`
}

type CitationStat struct {
	Source          string          `json:"source"`
	DomainAuthority DomainAuthority `json:"domainAuthority"`
	Mentioned       bool            `json:"mentioned"`
	URL             string          `json:"url"`
	Count           int             `json:"count"`
}

type ContentGap struct {
	Title      string `json:"title"`
	Type       string `json:"type"`
	Reason     string `json:"reason"`
	Difficulty string `json:"difficulty"`
}

type CitationOpportunity struct {
	Site         string          `json:"site"`
	Relevance    DomainAuthority `json:"relevance"`
	ContactGuess string          `json:"contactGuess"`
	PitchAngle   string          `json:"pitchAngle"`
	Missing      bool            `json:"missing"`
}

// EngineVisibility summarizes mention rate per answer engine label
type EngineVisibility struct {
	Engine     string `json:"engine"`
	Visibility int    `json:"visibility"`
	TopAnswer  string `json:"topAnswer"`
}

// AnalysisReport is the dashboard payload. It is not modified once built.
type AnalysisReport struct {
	OverallScore          int                    `json:"overallScore"`
	ShareOfVoice          []ShareOfVoice         `json:"shareOfVoice"`
	EngineBreakdown       []EngineVisibility     `json:"engineBreakdown"`
	TopicScores           []TopicScore           `json:"topicScores"`
	Citations             []CitationStat         `json:"citations"`
	ContentGaps           []ContentGap           `json:"contentGaps"`
	CitationOpportunities []CitationOpportunity  `json:"citationOpportunities"`
	PromptsGenerated      []PromptAnalysisResult `json:"promptsGenerated"`
	GeneratedAt           time.Time              `json:"generatedAt"`
}

// BrandShare returns the share-of-voice record for brand, if present
func (r *AnalysisReport) BrandShare(brand string) (ShareOfVoice, bool) {
	for _, s := range r.ShareOfVoice {
		if s.Brand == brand {
			return s, true
		}
	}
	return ShareOfVoice{}, false
}
