package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
	"github.com/AI-Template-SDK/senso-geo-wizard/services"
)

// ExtractSignalsTool handles the extract_signals MCP tool.
type ExtractSignalsTool struct {
	extractor services.SignalExtractor
}

func NewExtractSignalsTool(extractor services.SignalExtractor) *ExtractSignalsTool {
	return &ExtractSignalsTool{extractor: extractor}
}

func (t *ExtractSignalsTool) Definition() mcp.Tool {
	return mcp.NewTool("extract_signals",
		mcp.WithDescription(
			"Read brand visibility signals from one AI answer: whether the brand is mentioned, "+
				"which competitors appear, sentiment near the brand and an estimated rank.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The answer text to analyze"),
		),
		mcp.WithString("brand",
			mcp.Required(),
			mcp.Description("Brand name to look for"),
		),
		mcp.WithArray("competitors",
			mcp.Description("Competitor names to look for"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("intent",
			mcp.Description("Prompt intent: Comparison (default), Discovery, Commercial or Informational"),
			mcp.Enum("Comparison", "Discovery", "Commercial", "Informational"),
		),
	)
}

func (t *ExtractSignalsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	brand := req.GetString("brand", "")
	if text == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}
	if brand == "" {
		return mcp.NewToolResultError("'brand' is required"), nil
	}

	intent := models.Intent(req.GetString("intent", string(models.IntentComparison)))
	if err := models.ValidateIntent(intent); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	signals := t.extractor.Extract(text, brand, stringsArg(req, "competitors"), intent)
	if signals.CompetitorsMentioned == nil {
		signals.CompetitorsMentioned = []string{}
	}
	return jsonResult(signals)
}
