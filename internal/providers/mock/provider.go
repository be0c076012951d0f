package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"
	"unicode"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
)

const ProviderName = "mock"

// ModelLabel is reported as the answering model for simulated runs
const ModelLabel = "ChatGPT-4o (simulated)"

// Provider is a deterministic stand-in for a live answer engine. The same
// seed and prompt always produce the same answer and citations.
type Provider struct {
	seed    int64
	latency time.Duration
}

func NewProvider(seed int64, latency time.Duration) *Provider {
	return &Provider{seed: seed, latency: latency}
}

func (p *Provider) GetProviderName() string {
	return ProviderName
}

var skipWords = map[string]bool{
	"what": true, "which": true, "who": true, "how": true, "the": true, "best": true,
	"top": true, "are": true, "is": true, "for": true, "and": true, "software": true,
	"tools": true, "vs": true, "competitors": true, "pricing": true, "roi": true,
}

var positivePhrases = []string{"is a great choice", "is widely recommended", "is an efficient leader", "offers excellent value"}
var negativePhrases = []string{"can be slow and expensive", "is hard to set up", "has a buggy mobile app", "users report a lack of support"}
var neutralPhrases = []string{"is another option", "appears in several lists", "covers the basics", "is often compared"}

var citationPool = []common.GroundingChunk{
	{Web: &common.WebSource{URI: "https://www.g2.com/categories/%s", Title: "Best %s Software | G2"}},
	{Web: &common.WebSource{URI: "https://www.capterra.com/%s-software/", Title: "%s Software Reviews | Capterra"}},
	{Web: &common.WebSource{URI: "https://www.reddit.com/r/saas/comments/%s/", Title: "Which %s do you use?"}},
	{Web: &common.WebSource{URI: "https://techcrunch.com/tag/%s/", Title: "%s news | TechCrunch"}},
	{Web: &common.WebSource{URI: "https://medium.com/@analyst/%s-roundup", Title: "The %s roundup"}},
	{Web: &common.WebSource{URI: "https://vertexaisearch.cloud.google.com/grounding-api-redirect/%s", Title: "%s"}},
}

func (p *Provider) Respond(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error) {
	if p.latency > 0 {
		select {
		case <-time.After(p.latency):
		case <-ctx.Done():
			return nil, fmt.Errorf("simulated call interrupted: %v: %w", ctx.Err(), common.ErrServiceUnavailable)
		}
	}

	if req.Schema != nil {
		return nil, fmt.Errorf("structured output is not simulated: %w", common.ErrMalformedResponse)
	}

	faker := gofakeit.New(p.seedFor(req.Prompt))

	if !req.SearchGrounding {
		return &common.AIResponse{
			Response: fmt.Sprintf("# %s\n\n%s", firstLine(req.Prompt), faker.Paragraph(2, 4, 12, "\n\n")),
			Model:    ModelLabel,
		}, nil
	}

	text := p.answer(faker, req.Prompt, req.Entities)
	return &common.AIResponse{
		Response:        text,
		GroundingChunks: p.citations(faker, req.Prompt),
		Model:           ModelLabel,
		InputTokens:     len(strings.Fields(req.Prompt)),
		OutputTokens:    len(strings.Fields(text)),
	}, nil
}

func (p *Provider) seedFor(prompt string) int64 {
	h := fnv.New64a()
	h.Write([]byte(prompt))
	return p.seed ^ int64(h.Sum64()>>1)
}

// answer writes a short ranked list mentioning the proper nouns of the prompt.
// Each hinted entity the prompt does not name appears three times in four.
func (p *Provider) answer(faker *gofakeit.Faker, prompt string, entities []string) string {
	names := candidateNames(prompt)
	for _, entity := range entities {
		entity = strings.TrimSpace(entity)
		if entity == "" || containsFold(names, entity) {
			continue
		}
		if faker.Number(0, 3) > 0 {
			names = append(names, entity)
		}
	}
	for i := 0; i < 2; i++ {
		names = append(names, faker.Company())
	}
	faker.ShuffleStrings(names)

	var sb strings.Builder
	sb.WriteString(faker.Sentence(10))
	sb.WriteString("\n\n")
	for i, name := range names {
		var phrase string
		switch faker.Number(0, 2) {
		case 0:
			phrase = faker.RandomString(positivePhrases)
		case 1:
			phrase = faker.RandomString(negativePhrases)
		default:
			phrase = faker.RandomString(neutralPhrases)
		}
		fmt.Fprintf(&sb, "%d. %s %s. %s\n", i+1, name, phrase, faker.Sentence(8))
	}
	return sb.String()
}

func (p *Provider) citations(faker *gofakeit.Faker, prompt string) []common.GroundingChunk {
	slug := strings.ReplaceAll(strings.ToLower(faker.BuzzWord()), " ", "-")
	n := faker.Number(2, 4)
	start := faker.Number(0, len(citationPool)-1)

	subject := "Software"
	if names := candidateNames(prompt); len(names) > 0 {
		subject = names[0]
	}

	chunks := make([]common.GroundingChunk, 0, n)
	for i := 0; i < n; i++ {
		tmpl := citationPool[(start+i)%len(citationPool)].Web
		chunks = append(chunks, common.GroundingChunk{Web: &common.WebSource{
			URI:   fmt.Sprintf(tmpl.URI, slug),
			Title: fmt.Sprintf(tmpl.Title, subject),
		}})
	}
	return chunks
}

// candidateNames returns capitalized words of the prompt that look like brands
func candidateNames(prompt string) []string {
	seen := map[string]bool{}
	var names []string
	for _, field := range strings.Fields(prompt) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(word) < 3 || skipWords[strings.ToLower(word)] {
			continue
		}
		if r := []rune(word)[0]; !unicode.IsUpper(r) {
			continue
		}
		if !seen[word] {
			seen[word] = true
			names = append(names, word)
		}
	}
	return names
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
