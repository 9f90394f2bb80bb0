// Package impact implements the Impact Analysis tool of spec §4.9: bilingual
// (French/English) identifier and endpoint extraction, cross-file usage
// scanning, risk analysis, and search/test/followup suggestion generation.
package impact

import (
	"regexp"
	"strings"
)

// verbObjectPatterns pairs a verb-object regex (English and French) with
// the action it implies. Every pattern captures the identifier in group 1.
var verbObjectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\brename\s+(?:the\s+)?(\w+)`),
	regexp.MustCompile(`(?i)\bmodify\s+(?:the\s+)?(\w+)`),
	regexp.MustCompile(`(?i)\bdelete\s+(?:the\s+)?(\w+)`),
	regexp.MustCompile(`(?i)\bremove\s+(?:the\s+)?(\w+)`),
	regexp.MustCompile(`(?i)\badd\s+(?:a\s+|an\s+|the\s+)?(\w+)`),
	regexp.MustCompile(`(?i)\bupdate\s+(?:the\s+)?(\w+)`),
	regexp.MustCompile(`(?i)\brenommer\s+(?:le\s+|la\s+|les\s+)?(\w+)`),
	regexp.MustCompile(`(?i)\bmodifier\s+(?:le\s+|la\s+|les\s+)?(\w+)`),
	regexp.MustCompile(`(?i)\bsupprimer\s+(?:le\s+|la\s+|les\s+)?(\w+)`),
	regexp.MustCompile(`(?i)\bajouter\s+(?:un\s+|une\s+|le\s+|la\s+)?(\w+)`),
	regexp.MustCompile(`(?i)\bmettre\s+à\s+jour\s+(?:le\s+|la\s+)?(\w+)`),
}

var (
	pascalCaseRe = regexp.MustCompile(`\b[A-Z][a-zA-Z0-9]*[a-z][A-Z][a-zA-Z0-9]*\b|\b[A-Z][a-z0-9]+[A-Z][a-zA-Z0-9]*\b`)
	snakeCaseRe  = regexp.MustCompile(`\b[a-z][a-z0-9]*(?:_[a-z0-9]+)+\b`)
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "le": true, "la": true, "les": true,
	"un": true, "une": true,
}

// ExtractIdentifiers mines an intent string for referenced identifiers:
// verb-object matches in English and French, plus any PascalCase or
// snake_case token anywhere in the text.
func ExtractIdentifiers(intent string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || stopWords[strings.ToLower(name)] {
			return
		}
		if seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	for _, re := range verbObjectPatterns {
		for _, m := range re.FindAllStringSubmatch(intent, -1) {
			add(m[1])
		}
	}
	for _, m := range pascalCaseRe.FindAllString(intent, -1) {
		add(m)
	}
	for _, m := range snakeCaseRe.FindAllString(intent, -1) {
		add(m)
	}
	return out
}

var (
	httpMethodRe  = regexp.MustCompile(`(?i)\b(GET|POST|PUT|PATCH|DELETE)\s+(/[\w{}/:\-]*)`)
	routeDecoRe   = regexp.MustCompile(`@(?:app|router|blueprint)\.(?:get|post|put|patch|delete)\(\s*["']([^"']+)["']`)
	fetchCallRe   = regexp.MustCompile(`(?:fetch|axios\.\w+)\(\s*["']([^"']+)["']`)
)

// Endpoint is one extracted HTTP route or client call target.
type Endpoint struct {
	Method string
	Path   string
}

// ExtractEndpoints mines both the intent text and arbitrary file content
// for HTTP endpoints: method+path mentions, framework route decorators,
// and fetch/axios call targets (spec §4.9).
func ExtractEndpoints(sources ...string) []Endpoint {
	seen := map[string]bool{}
	var out []Endpoint
	add := func(method, path string) {
		key := strings.ToUpper(method) + " " + path
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, Endpoint{Method: strings.ToUpper(method), Path: path})
	}

	for _, src := range sources {
		for _, m := range httpMethodRe.FindAllStringSubmatch(src, -1) {
			add(m[1], m[2])
		}
		for _, m := range routeDecoRe.FindAllStringSubmatch(src, -1) {
			add("ANY", m[1])
		}
		for _, m := range fetchCallRe.FindAllStringSubmatch(src, -1) {
			add("ANY", m[1])
		}
	}
	return out
}
