package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/metrics"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
)

type draftingService struct {
	responder providers.Responder
	metrics   *metrics.Metrics
}

func NewDraftingService(responder providers.Responder, m *metrics.Metrics) DraftingService {
	return &draftingService{responder: responder, metrics: m}
}

func (s *draftingService) DraftContent(ctx context.Context, topic, contentType, brand string, tone models.ContentTone) string {
	prompt := fmt.Sprintf(`Write a content brief for a %s piece titled "%s".
Brand: %s
Tone: %s

Include an executive summary, key talking points and a draft introduction. Format the answer as Markdown.`,
		contentType, topic, brand, tone)

	resp, err := s.responder.Respond(ctx, common.RespondRequest{
		Prompt:            prompt,
		SystemInstruction: "You are a content strategist writing for AI search visibility.",
	})
	if err != nil || strings.TrimSpace(resp.Response) == "" {
		logger.Log.Warnf("[DraftContent] Using template draft for %q: %v", topic, err)
		s.metrics.RecordFallback("content")
		return contentTemplate(topic, contentType, brand, tone)
	}
	return resp.Response
}

func (s *draftingService) DraftEmail(ctx context.Context, site, contact, angle, brand string, tone models.ContentTone) string {
	prompt := fmt.Sprintf(`Write a short outreach email to the editor of %s (%s).
Pitch angle: %s
Sender brand: %s
Tone: %s

Start with a "Subject:" line.`,
		site, contact, angle, brand, tone)

	resp, err := s.responder.Respond(ctx, common.RespondRequest{
		Prompt:            prompt,
		SystemInstruction: "You write concise, personal PR outreach emails.",
	})
	if err != nil || strings.TrimSpace(resp.Response) == "" {
		logger.Log.Warnf("[DraftEmail] Using template email for %s: %v", site, err)
		s.metrics.RecordFallback("email")
		return emailTemplate(site, contact, angle, brand)
	}
	return resp.Response
}

func contentTemplate(topic, contentType, brand string, tone models.ContentTone) string {
	return fmt.Sprintf(`# %s
**Type:** %s | **Tone:** %s

## Executive Summary
This content is designed to rank for high-intent GEO queries. It positions %s as the thought leader.

## Key Talking Points
- Point 1: Why current solutions fail.
- Point 2: How %s solves this uniquely.
- Point 3: Data-backed evidence.

## Draft Intro
In today's fast-paced %s landscape, finding the right solution is critical. Many users struggle with legacy tools...`,
		topic, contentType, tone, brand, brand, contentType)
}

func emailTemplate(site, contact, angle, brand string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(contact), "@")
	if name == "" {
		name = "Editor"
	}

	return fmt.Sprintf(`Subject: Quick question re: %s for %s

Hi %s,

I noticed %s hasn't covered the latest shifts in our industry yet.

At %s, we just released data showing...

Would you be open to a guest post or a quick chat?

Best,
[Your Name]`,
		angle, site, name, site, brand)
}
