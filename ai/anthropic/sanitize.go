package anthropic

import "strings"

// sanitizeJSON normalizes an LLM response so it can be parsed as a JSON
// object. Models occasionally wrap output in markdown code fences or add
// prose around the object despite instructions not to; clip to the outermost
// braces when both are present.
func sanitizeJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	open := strings.IndexByte(s, '{')
	last := strings.LastIndexByte(s, '}')
	if open >= 0 && last > open {
		s = s[open : last+1]
	}
	return s
}
