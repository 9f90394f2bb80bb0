package orchestrator

import (
	"strconv"
	"strings"
)

// extractPath resolves a dotted JSON path (with optional bracket or
// dot-numeric indexing, e.g. "items[0].name" or "items.0.name") against a
// result map, as used by tool chains to pull a value out of the prior
// step's result (spec §4.3 create_tool_chain).
func extractPath(v any, path string) (any, bool) {
	tokens := tokenizePath(path)
	cur := v
	for _, tok := range tokens {
		if idx, err := strconv.Atoi(tok); err == nil {
			arr, ok := cur.([]any)
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			cur = arr[idx]
			continue
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := m[tok]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// tokenizePath splits a path like "a.b[0].c" or "a.0.c" into ["a","b","0","c"].
func tokenizePath(path string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range path {
		switch r {
		case '.':
			flush()
		case '[':
			flush()
		case ']':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}
