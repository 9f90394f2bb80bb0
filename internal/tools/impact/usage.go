package impact

import (
	"regexp"
	"strings"

	"github.com/collegue/specmcp/internal/parser"
)

// File is one input unit for impact analysis.
type File struct {
	Path     string
	Content  string
	Language string
}

// ImpactedFile is one file an identifier touches, with a confidence level
// derived from how many times the identifier appears (spec §4.9).
type ImpactedFile struct {
	Path       string `json:"path"`
	Identifier string `json:"identifier"`
	Occurrences int   `json:"occurrences"`
	Confidence string `json:"confidence"` // "high", "medium", or "low"
}

// ConfidenceMode controls whether low-confidence import-inferred hits are
// included.
type ConfidenceMode string

const (
	Conservative ConfidenceMode = "conservative"
	Aggressive   ConfidenceMode = "aggressive"
)

var wordBoundaryCache = map[string]*regexp.Regexp{}

func wordBoundaryRe(name string) *regexp.Regexp {
	if re, ok := wordBoundaryCache[name]; ok {
		return re
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	wordBoundaryCache[name] = re
	return re
}

// caseVariants returns name plus its snake_case and PascalCase renderings,
// so a camelCase identifier in the intent also matches a Python
// snake_case usage of the same concept and vice versa.
func caseVariants(name string) []string {
	variants := map[string]bool{name: true}
	variants[toSnakeCase(name)] = true
	variants[toPascalCase(name)] = true
	out := make([]string, 0, len(variants))
	for v := range variants {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func toPascalCase(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// importModules returns every module/package name a file imports, via the
// AST for Python and a plain regex for TS/JS (spec §4.9).
func importModules(p *parser.Parser, f File) []string {
	lang := f.Language
	if lang == "" {
		lang = languageFromExtension(f.Path)
	}

	var out []string
	switch lang {
	case "python":
		view, err := p.Parse(f.Content, "python")
		if err != nil || !view.Valid {
			return nil
		}
		for _, imp := range view.Imports {
			mod := imp.Module
			if mod == "" {
				mod = imp.Name
			}
			out = append(out, strings.SplitN(mod, ".", 2)[0])
		}
	case "typescript", "javascript":
		for _, m := range jsImportFromRe.FindAllStringSubmatch(f.Content, -1) {
			out = append(out, m[1])
		}
	}
	return out
}

var jsImportFromRe = regexp.MustCompile(`from\s*['"]([^'"]+)['"]`)

func languageFromExtension(path string) string {
	switch {
	case strings.HasSuffix(path, ".py"):
		return "python"
	case strings.HasSuffix(path, ".ts"), strings.HasSuffix(path, ".tsx"):
		return "typescript"
	case strings.HasSuffix(path, ".js"), strings.HasSuffix(path, ".jsx"):
		return "javascript"
	default:
		return ""
	}
}

// FindImpactedFiles scans every file for usages of each identifier (case
// insensitive word boundary, plus snake/Pascal case variants). Count>1
// gives high confidence, otherwise medium. In aggressive mode, files whose
// imports merely name the identifier's module also contribute a low
// confidence hit even with zero direct textual occurrences.
func FindImpactedFiles(p *parser.Parser, files []File, identifiers []string, mode ConfidenceMode) []ImpactedFile {
	var out []ImpactedFile
	for _, ident := range identifiers {
		variants := caseVariants(ident)
		for _, f := range files {
			total := 0
			for _, v := range variants {
				total += len(wordBoundaryRe(v).FindAllStringIndex(f.Content, -1))
			}
			switch {
			case total > 1:
				out = append(out, ImpactedFile{Path: f.Path, Identifier: ident, Occurrences: total, Confidence: "high"})
			case total == 1:
				out = append(out, ImpactedFile{Path: f.Path, Identifier: ident, Occurrences: total, Confidence: "medium"})
			case mode == Aggressive:
				for _, mod := range importModules(p, f) {
					if strings.EqualFold(mod, ident) {
						out = append(out, ImpactedFile{Path: f.Path, Identifier: ident, Occurrences: 0, Confidence: "low"})
						break
					}
				}
			}
		}
	}
	if mode == Conservative {
		filtered := out[:0]
		for _, f := range out {
			if f.Confidence == "high" {
				filtered = append(filtered, f)
			}
		}
		return filtered
	}
	return out
}
