package impact

import "fmt"

const (
	maxSearchQueries = 20
	maxTestCommands  = 15
	maxFollowups     = 10
)

// SearchQuery is one suggested way to locate related code.
type SearchQuery struct {
	Kind  string `json:"kind"` // "symbol", "text", or "regex"
	Query string `json:"query"`
}

// BuildSearchQueries proposes symbol/text/regex lookups for every
// identifier and endpoint, capped at 20 (spec §4.9).
func BuildSearchQueries(identifiers []string, endpoints []Endpoint) []SearchQuery {
	var out []SearchQuery
	for _, id := range identifiers {
		out = append(out, SearchQuery{Kind: "symbol", Query: id})
		out = append(out, SearchQuery{Kind: "text", Query: id})
		if len(out) >= maxSearchQueries {
			return out[:maxSearchQueries]
		}
	}
	for _, ep := range endpoints {
		out = append(out, SearchQuery{Kind: "regex", Query: regexForEndpoint(ep)})
		if len(out) >= maxSearchQueries {
			return out[:maxSearchQueries]
		}
	}
	if len(out) > maxSearchQueries {
		return out[:maxSearchQueries]
	}
	return out
}

func regexForEndpoint(ep Endpoint) string {
	if ep.Method == "" || ep.Method == "ANY" {
		return ep.Path
	}
	return ep.Method + `\s+` + ep.Path
}

// BuildTestCommands proposes pytest/jest/language-appropriate invocations
// targeting each impacted file, capped at 15 (spec §4.9).
func BuildTestCommands(files []ImpactedFile) []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range files {
		cmd := testCommandFor(f.Path)
		if cmd == "" || seen[cmd] {
			continue
		}
		seen[cmd] = true
		out = append(out, cmd)
		if len(out) >= maxTestCommands {
			break
		}
	}
	return out
}

func testCommandFor(path string) string {
	switch languageFromExtension(path) {
	case "python":
		return fmt.Sprintf("pytest %s -v", path)
	case "typescript", "javascript":
		return fmt.Sprintf("npx jest %s", path)
	default:
		return ""
	}
}

// BuildFollowups proposes up to 10 next actions derived from the detected
// risks (spec §4.9).
func BuildFollowups(risks []Risk) []string {
	var out []string
	for _, r := range risks {
		switch r.Category {
		case BreakingChange:
			out = append(out, "Update or add a changelog entry describing the breaking change")
		case Security:
			out = append(out, "Request a security review before merging")
		case DataMigration:
			out = append(out, "Write and test a rollback migration")
		case Performance:
			out = append(out, "Benchmark the affected path before and after the change")
		case Compatibility:
			out = append(out, "Document the deprecation timeline for affected consumers")
		}
		if len(out) >= maxFollowups {
			break
		}
	}
	return out
}
