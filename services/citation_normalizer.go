package services

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
	"mvdan.cc/xurls/v2"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
)

type citationNormalizer struct {
	denylist []string
}

func NewCitationNormalizer(policy *config.Policy) CitationNormalizer {
	return &citationNormalizer{denylist: policy.CitationDenylist}
}

// Normalize drops incomplete, denylisted and unparseable chunks and collapses
// duplicate URLs. A URL keeps its first position; the last title seen wins.
func (n *citationNormalizer) Normalize(chunks []common.GroundingChunk) []models.Citation {
	citations := []models.Citation{}
	index := map[string]int{}

	for _, chunk := range chunks {
		if chunk.Web == nil || chunk.Web.URI == "" || chunk.Web.Title == "" {
			continue
		}

		u, err := url.Parse(chunk.Web.URI)
		if err != nil || u.Hostname() == "" || (u.Scheme != "http" && u.Scheme != "https") {
			logger.Log.Debugf("[CitationNormalizer] Dropping malformed citation URL: %q", chunk.Web.URI)
			continue
		}

		source := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		if n.denied(source, u.EscapedPath()) {
			continue
		}

		c := models.Citation{Source: source, URL: chunk.Web.URI, Title: chunk.Web.Title}
		if i, ok := index[c.URL]; ok {
			citations[i] = c
			continue
		}
		index[c.URL] = len(citations)
		citations = append(citations, c)
	}

	return citations
}

// denied matches entries without a slash against the host and its parents,
// and entries with a slash against the start of host+path
func (n *citationNormalizer) denied(host, path string) bool {
	for _, entry := range n.denylist {
		if strings.Contains(entry, "/") {
			if strings.HasPrefix(host+path, entry) {
				return true
			}
			continue
		}
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}

var inlineURL = xurls.Strict()

func (n *citationNormalizer) ChunksFromText(text string) []common.GroundingChunk {
	var chunks []common.GroundingChunk
	for _, raw := range inlineURL.FindAllString(text, -1) {
		raw = strings.TrimRight(raw, ".,;:)")
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			continue
		}
		chunks = append(chunks, common.GroundingChunk{Web: &common.WebSource{
			URI:   raw,
			Title: strings.TrimPrefix(strings.ToLower(u.Hostname()), "www."),
		}})
	}
	return chunks
}

// IsOwnSite reports whether a citation points at the same registrable domain
// as website, so "blog.acme.com" counts for "https://www.acme.com".
func (n *citationNormalizer) IsOwnSite(citation models.Citation, website string) bool {
	own := models.HostOf(website)
	if own == "" || citation.Source == "" {
		return false
	}
	if citation.Source == own {
		return true
	}

	ownRoot, err := publicsuffix.EffectiveTLDPlusOne(own)
	if err != nil {
		return false
	}
	citedRoot, err := publicsuffix.EffectiveTLDPlusOne(citation.Source)
	if err != nil {
		return false
	}
	return ownRoot == citedRoot
}
