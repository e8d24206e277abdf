package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencePattern  = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	objectPattern = regexp.MustCompile(`\{[\s\S]*\}`)
)

// DecodeJSON unmarshals a model answer that should be JSON but may be
// wrapped in a markdown fence or surrounded by prose.
func DecodeJSON(content string, v any) error {
	content = strings.TrimSpace(content)
	if err := json.Unmarshal([]byte(content), v); err == nil {
		return nil
	}
	if m := fencePattern.FindStringSubmatch(content); m != nil {
		if err := json.Unmarshal([]byte(m[1]), v); err == nil {
			return nil
		}
	}
	if m := objectPattern.FindString(content); m != "" {
		if err := json.Unmarshal([]byte(m), v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("parse response: no JSON object in %q", Truncate(content, 80))
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
