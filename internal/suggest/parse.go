package suggest

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// parseOptions interprets the LLM response as a JSON array of message
// strings. Models occasionally wrap the array in a markdown code fence, so
// fences are stripped first. Anything that still fails to parse degrades to
// a single-option array of the raw text: a malformed response costs quality,
// not the whole automation.
func parseOptions(raw string) []string {
	cleaned := stripCodeFence(strings.TrimSpace(raw))

	var options []string
	if err := json.Unmarshal([]byte(cleaned), &options); err == nil {
		// Drop empty entries the model may have produced
		filtered := options[:0]
		for _, o := range options {
			if s := strings.TrimSpace(o); s != "" {
				filtered = append(filtered, s)
			}
		}
		if len(filtered) > 0 {
			return filtered
		}
	}

	return []string{strings.TrimSpace(raw)}
}

// stripCodeFence removes a surrounding ``` or ```json fence if present.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty)
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func encodeOptions(options []string) (datatypes.JSON, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
