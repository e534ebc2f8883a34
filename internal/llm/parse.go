package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls the JSON payload out of a model response. Models wrap
// JSON in markdown fences often enough that every provider runs this before
// returning. A payload that still is not valid JSON is a malformed response.
func ExtractJSON(text string) (json.RawMessage, error) {
	s := strings.TrimSpace(text)

	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty payload: %w", ErrMalformedResponse)
	}
	if !json.Valid([]byte(s)) {
		return nil, fmt.Errorf("invalid JSON payload: %w", ErrMalformedResponse)
	}
	return json.RawMessage(s), nil
}
