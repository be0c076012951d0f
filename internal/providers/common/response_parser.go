package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripCodeFence removes a surrounding ```json ... ``` fence that models often
// wrap structured answers in
func StripCodeFence(content string) string {
	clean := strings.TrimSpace(content)
	if !strings.HasPrefix(clean, "```") {
		return clean
	}
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```JSON")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}

// DecodeJSON parses a model's structured answer into v. Any failure is
// reported as ErrMalformedResponse.
func DecodeJSON(content string, v interface{}) error {
	clean := StripCodeFence(content)
	if clean == "" {
		return fmt.Errorf("empty structured response: %w", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(clean), v); err != nil {
		return fmt.Errorf("failed to parse structured response (%v): %w", err, ErrMalformedResponse)
	}
	return nil
}

// Truncate shortens s to at most n bytes for log output
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:Min(len(s), n)] + "..."
}

// Min returns the smaller of two integers
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
