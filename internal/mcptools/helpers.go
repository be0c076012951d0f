// Package mcptools exposes the visibility pipeline as MCP tools.
//
// Each tool is a struct with its services injected via constructor,
// a Definition() returning the mcp.Tool schema and a Handle() method.
package mcptools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
)

// stringsArg reads an array of strings, skipping blanks and non-strings
func stringsArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// competitorsArg reads an array of {name, website} objects
func competitorsArg(req mcp.CallToolRequest, key string) ([]models.Competitor, error) {
	raw, ok := req.GetArguments()[key].([]interface{})
	if !ok {
		return nil, nil
	}
	out := make([]models.Competitor, 0, len(raw))
	for i, v := range raw {
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be an object with name and website", key, i)
		}
		name, _ := obj["name"].(string)
		website, _ := obj["website"].(string)
		out = append(out, models.Competitor{Name: strings.TrimSpace(name), Website: strings.TrimSpace(website)})
	}
	return out, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
