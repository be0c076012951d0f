package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
)

const (
	trendLength          = 6
	maxContentGaps       = 3
	maxOpportunities     = 4
	gapDifficulty        = "Medium"
	gapContentType       = "Comparison"
	opportunityPitch     = "Include in Best-of List"
	unknownEngineLabel   = "Unknown"
	opportunityContactAt = "editorial@"
)

type aggregationService struct {
	policy *config.Policy
}

func NewAggregationService(policy *config.Policy) AggregationService {
	return &aggregationService{policy: policy}
}

// Aggregate builds the dashboard report. Only analyzed prompts are scored;
// every prompt is passed through in PromptsGenerated.
func (s *aggregationService) Aggregate(profile models.BrandProfile, topics []models.Topic, prompts []models.PromptAnalysisResult) *models.AnalysisReport {
	report := &models.AnalysisReport{
		ShareOfVoice:          []models.ShareOfVoice{},
		EngineBreakdown:       []models.EngineVisibility{},
		TopicScores:           []models.TopicScore{},
		Citations:             []models.CitationStat{},
		ContentGaps:           []models.ContentGap{},
		CitationOpportunities: []models.CitationOpportunity{},
		PromptsGenerated:      models.ResolveTopicNames(prompts, topics),
	}

	analyzed := make([]models.PromptAnalysisResult, 0, len(prompts))
	for _, p := range prompts {
		if p.Analyzed {
			analyzed = append(analyzed, p)
		}
	}

	brand := s.brandShare(profile, analyzed)
	competitors := s.competitorShares(profile, analyzed)
	// Head-to-head only exists against competitors that appeared at all
	if brand.Mentions > 0 {
		sum, contested := 0, 0
		for _, c := range competitors {
			if c.Mentions == 0 {
				continue
			}
			sum += 100 - c.WinRate
			contested++
		}
		if contested > 0 {
			brand.WinRate = roundHalfUp(float64(sum) / float64(contested))
		}
	}

	report.OverallScore = brand.Score
	report.ShareOfVoice = append([]models.ShareOfVoice{brand}, competitors...)
	sort.SliceStable(report.ShareOfVoice, func(i, j int) bool {
		return report.ShareOfVoice[i].Score > report.ShareOfVoice[j].Score
	})

	report.EngineBreakdown = s.engineBreakdown(analyzed)
	report.TopicScores = s.topicScores(profile, topics, analyzed)
	report.Citations = s.citationStats(analyzed)
	report.ContentGaps = s.contentGaps(profile, report.TopicScores)
	report.CitationOpportunities = s.citationOpportunities(report.Citations)

	return report
}

func (s *aggregationService) brandShare(profile models.BrandProfile, analyzed []models.PromptAnalysisResult) models.ShareOfVoice {
	mentions, positive, negative := 0, 0, 0
	for _, p := range analyzed {
		if !p.BrandMentioned {
			continue
		}
		mentions++
		switch p.Sentiment {
		case models.SentimentPositive:
			positive++
		case models.SentimentNegative:
			negative++
		}
	}

	score := percent(mentions, len(analyzed))
	sentiment := 0.0
	if mentions > 0 {
		sentiment = roundTo2(float64(positive-negative) / float64(mentions))
	}

	return models.ShareOfVoice{
		Brand:            profile.Name,
		Score:            score,
		Sentiment:        sentiment,
		Mentions:         mentions,
		Trend:            flatTrend(score),
		PositiveMentions: positive,
		NegativeMentions: negative,
	}
}

func (s *aggregationService) competitorShares(profile models.BrandProfile, analyzed []models.PromptAnalysisResult) []models.ShareOfVoice {
	shares := make([]models.ShareOfVoice, 0, len(profile.Competitors))
	for _, comp := range profile.Competitors {
		mentions, both := 0, 0
		for _, p := range analyzed {
			if !mentionsCompetitor(p, comp.Name) {
				continue
			}
			mentions++
			if p.BrandMentioned {
				both++
			}
		}

		winRate := 0
		if mentions > 0 {
			winRate = 100 - percent(both, mentions)
		}

		score := percent(mentions, len(analyzed))
		shares = append(shares, models.ShareOfVoice{
			Brand:    comp.Name,
			Score:    score,
			Mentions: mentions,
			Trend:    flatTrend(score),
			WinRate:  winRate,
		})
	}
	return shares
}

func (s *aggregationService) topicScores(profile models.BrandProfile, topics []models.Topic, analyzed []models.PromptAnalysisResult) []models.TopicScore {
	scores := []models.TopicScore{}
	for _, topic := range topics {
		if !topic.Selected {
			continue
		}

		total, brandMentions := 0, 0
		compMentions := make([]int, len(profile.Competitors))
		for _, p := range analyzed {
			if p.TopicID != topic.ID {
				continue
			}
			total++
			if p.BrandMentioned {
				brandMentions++
			}
			for i, comp := range profile.Competitors {
				if mentionsCompetitor(p, comp.Name) {
					compMentions[i]++
				}
			}
		}

		competitorAvg := 0
		if total > 0 && len(compMentions) > 0 {
			sum := 0
			for _, n := range compMentions {
				sum += n
			}
			avg := float64(sum) / float64(len(compMentions))
			competitorAvg = roundHalfUp(100 * avg / float64(total))
		}

		scores = append(scores, models.TopicScore{
			TopicID:       topic.ID,
			Topic:         topic.Name,
			BrandScore:    percent(brandMentions, total),
			CompetitorAvg: competitorAvg,
		})
	}
	return scores
}

// citationStats groups citations by source. Count is the number of distinct
// prompts citing the source; URL is the first one seen.
func (s *aggregationService) citationStats(analyzed []models.PromptAnalysisResult) []models.CitationStat {
	stats := []models.CitationStat{}
	index := map[string]int{}

	for _, p := range analyzed {
		seen := map[string]bool{}
		for _, c := range p.Citations {
			if c.Source == "" || seen[c.Source] {
				continue
			}
			seen[c.Source] = true

			i, ok := index[c.Source]
			if !ok {
				i = len(stats)
				index[c.Source] = i
				stats = append(stats, models.CitationStat{
					Source:          c.Source,
					DomainAuthority: s.authority(c.Source),
					URL:             c.URL,
				})
			}
			stats[i].Count++
			if p.BrandMentioned {
				stats[i].Mentioned = true
			}
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})
	return stats
}

func (s *aggregationService) authority(source string) models.DomainAuthority {
	if s.policy.IsHighAuthority(source) {
		return models.AuthorityHigh
	}
	return models.AuthorityMedium
}

func (s *aggregationService) contentGaps(profile models.BrandProfile, scores []models.TopicScore) []models.ContentGap {
	gaps := []models.ContentGap{}
	for _, t := range scores {
		if len(gaps) == maxContentGaps {
			break
		}
		if t.BrandScore >= t.CompetitorAvg {
			continue
		}
		gaps = append(gaps, models.ContentGap{
			Title: fmt.Sprintf("%s: %s vs Competitors", t.Topic, profile.Name),
			Type:  gapContentType,
			Reason: fmt.Sprintf("Competitors are mentioned in %d%% of %s answers versus %d%% for %s.",
				t.CompetitorAvg, t.Topic, t.BrandScore, profile.Name),
			Difficulty: gapDifficulty,
		})
	}
	return gaps
}

func (s *aggregationService) citationOpportunities(stats []models.CitationStat) []models.CitationOpportunity {
	opportunities := []models.CitationOpportunity{}
	for _, c := range stats {
		if len(opportunities) == maxOpportunities {
			break
		}
		if c.Mentioned {
			continue
		}

		relevance := models.AuthorityMedium
		if c.DomainAuthority == models.AuthorityHigh {
			relevance = models.AuthorityHigh
		}
		opportunities = append(opportunities, models.CitationOpportunity{
			Site:         c.Source,
			Relevance:    relevance,
			ContactGuess: opportunityContactAt + c.Source,
			PitchAngle:   opportunityPitch,
			Missing:      true,
		})
	}
	return opportunities
}

func (s *aggregationService) engineBreakdown(analyzed []models.PromptAnalysisResult) []models.EngineVisibility {
	type tally struct {
		answers, mentions int
		bestRank          int
	}

	var order []string
	tallies := map[string]*tally{}
	for _, p := range analyzed {
		engine := p.Model
		if engine == "" {
			engine = unknownEngineLabel
		}
		t, ok := tallies[engine]
		if !ok {
			t = &tally{}
			tallies[engine] = t
			order = append(order, engine)
		}
		t.answers++
		if p.BrandMentioned {
			t.mentions++
			if p.Rank != nil && (t.bestRank == 0 || *p.Rank < t.bestRank) {
				t.bestRank = *p.Rank
			}
		}
	}

	engines := make([]models.EngineVisibility, 0, len(order))
	for _, engine := range order {
		t := tallies[engine]
		summary := fmt.Sprintf("Mentioned in %d of %d answers", t.mentions, t.answers)
		if t.bestRank > 0 {
			summary += fmt.Sprintf(", best rank #%d", t.bestRank)
		}
		engines = append(engines, models.EngineVisibility{
			Engine:     engine,
			Visibility: percent(t.mentions, t.answers),
			TopAnswer:  summary,
		})
	}
	return engines
}

func mentionsCompetitor(p models.PromptAnalysisResult, name string) bool {
	for _, m := range p.CompetitorsMentioned {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}

func flatTrend(score int) []int {
	trend := make([]int, trendLength)
	for i := range trend {
		trend[i] = score
	}
	return trend
}

// percent returns round(100*n/d), or 0 when d is 0
func percent(n, d int) int {
	if d == 0 {
		return 0
	}
	return roundHalfUp(100 * float64(n) / float64(d))
}

// roundHalfUp rounds .5 toward positive infinity
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func roundTo2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
