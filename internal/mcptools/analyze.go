package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/wizard"
	"github.com/AI-Template-SDK/senso-geo-wizard/services"
)

// AnalyzeVisibilityTool handles the analyze_visibility MCP tool. It runs the
// whole wizard without a session: topics, prompts, analysis and report.
type AnalyzeVisibilityTool struct {
	topics   services.TopicService
	prompts  services.PromptService
	analysis services.AnalysisService
}

func NewAnalyzeVisibilityTool(topics services.TopicService, prompts services.PromptService, analysis services.AnalysisService) *AnalyzeVisibilityTool {
	return &AnalyzeVisibilityTool{topics: topics, prompts: prompts, analysis: analysis}
}

func (t *AnalyzeVisibilityTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_visibility",
		mcp.WithDescription(
			"Measure how visible a brand is in AI answer engines. Generates buyer prompts for the brand's topics, "+
				"asks the configured answer engine, and returns the aggregated report as JSON "+
				"(share of voice, topic scores, citations, content gaps).",
		),
		mcp.WithString("brand",
			mcp.Required(),
			mcp.Description("Brand name"),
		),
		mcp.WithString("website",
			mcp.Required(),
			mcp.Description("Brand website, e.g. https://www.acme.com"),
		),
		mcp.WithString("industry",
			mcp.Required(),
			mcp.Description("Industry or category, e.g. CRM"),
		),
		mcp.WithArray("competitors",
			mcp.Required(),
			mcp.Description("One to five competitors"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":    map[string]any{"type": "string"},
					"website": map[string]any{"type": "string"},
				},
				"required": []string{"name", "website"},
			}),
		),
		mcp.WithArray("topics",
			mcp.Description("Topic names to analyze. Suggested topics are used when omitted."),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

func (t *AnalyzeVisibilityTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	competitors, err := competitorsArg(req, "competitors")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	profile := models.BrandProfile{
		Name:        req.GetString("brand", ""),
		Website:     req.GetString("website", ""),
		Industry:    req.GetString("industry", ""),
		Competitors: competitors,
	}
	if err := wizard.ValidateProfile(profile); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var topics []models.Topic
	if names := stringsArg(req, "topics"); len(names) > 0 {
		for _, name := range names {
			topics = append(topics, t.topics.NewCustomTopic(name))
		}
	} else {
		topics = t.topics.SuggestTopics(ctx, profile)
	}

	prompts := t.prompts.GeneratePrompts(ctx, profile, topics)
	if len(prompts) == 0 {
		return mcp.NewToolResultError("no prompts could be generated for the selected topics"), nil
	}

	logger.Log.Infof("[MCP] analyze_visibility: %s, %d topics, %d prompts", profile.Name, len(topics), len(prompts))
	report, err := t.analysis.RunAnalysis(ctx, profile, topics, prompts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return jsonResult(report)
}
