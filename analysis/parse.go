package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSON unmarshals a model reply into out, tolerating the markdown
// code fences models sometimes wrap JSON in despite instructions.
func decodeJSON(raw string, out any) error {
	cleaned := stripCodeFence(raw)
	if cleaned == "" {
		return fmt.Errorf("empty payload")
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}

// stripCodeFence removes a surrounding ``` or ```json fence and trims
// whitespace. Text without a fence passes through trimmed.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
