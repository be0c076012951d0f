package mcptools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/AI-Template-SDK/senso-geo-wizard/services"
)

const Version = "0.1.0"

// NewServer registers the visibility tools on a new MCP server
func NewServer(extractor services.SignalExtractor, topics services.TopicService, prompts services.PromptService, analysis services.AnalysisService) *server.MCPServer {
	s := server.NewMCPServer(
		"senso-geo-wizard",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	signalsTool := NewExtractSignalsTool(extractor)
	s.AddTool(signalsTool.Definition(), signalsTool.Handle)

	analyzeTool := NewAnalyzeVisibilityTool(topics, prompts, analysis)
	s.AddTool(analyzeTool.Definition(), analyzeTool.Handle)

	return s
}
