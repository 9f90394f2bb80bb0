// Package consistency implements the Repo Consistency Checker of spec
// §4.7: unused imports/variables, dead code, cross-file duplication, and
// (deep mode) unresolved symbols.
package consistency

import (
	"regexp"
	"strings"

	"github.com/collegue/specmcp/internal/finding"
	"github.com/collegue/specmcp/internal/parser"
)

// File is one input unit: a path, its content, and an optional explicit
// language (derived from the extension otherwise).
type File struct {
	Path     string
	Content  string
	Language string
}

func languageFor(f File) string {
	if f.Language != "" {
		return f.Language
	}
	switch {
	case strings.HasSuffix(f.Path, ".py"):
		return "python"
	case strings.HasSuffix(f.Path, ".ts") || strings.HasSuffix(f.Path, ".tsx"):
		return "typescript"
	case strings.HasSuffix(f.Path, ".js") || strings.HasSuffix(f.Path, ".jsx"):
		return "javascript"
	case strings.HasSuffix(f.Path, ".php"):
		return "php"
	default:
		return ""
	}
}

var wordBoundaryCache = map[string]*regexp.Regexp{}

func wordBoundaryRe(name string) *regexp.Regexp {
	if re, ok := wordBoundaryCache[name]; ok {
		return re
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	wordBoundaryCache[name] = re
	return re
}

// countOccurrencesExcludingLine counts non-overlapping word-boundary occurrences of
// name across all lines except the given import/declaration line.
func countOccurrencesExcludingLine(content, name string, declLine int) int {
	re := wordBoundaryRe(name)
	count := 0
	for i, line := range strings.Split(content, "\n") {
		if i+1 == declLine {
			continue
		}
		count += len(re.FindAllStringIndex(line, -1))
	}
	return count
}

// CheckUnusedImportsPython walks the AST-derived import list and flags any
// imported alias never referenced elsewhere in the file (spec §4.7).
func CheckUnusedImportsPython(p *parser.Parser, f File) []finding.Finding {
	view, err := p.Parse(f.Content, "python")
	if err != nil || !view.Valid {
		return nil
	}
	var out []finding.Finding
	for _, imp := range view.Imports {
		name := imp.Alias
		if name == "" {
			name = imp.Name
		}
		if name == "" {
			name = imp.Module
		}
		if name == "" || name == "*" {
			continue
		}
		// a dotted module import ("import os.path") is referenced by its
		// first segment in code.
		refName := strings.SplitN(name, ".", 2)[0]
		if countOccurrencesExcludingLine(f.Content, refName, imp.Line) == 0 {
			out = append(out, finding.Finding{
				RuleID:     "unused_import",
				Severity:   finding.Low,
				File:       f.Path,
				Line:       imp.Line,
				Title:      "Unused import",
				Message:    "imported name '" + name + "' is never used",
				Type:       "unused_import",
				Engine:     "consistency_checker",
				Confidence: 85,
			})
		}
	}
	return out
}

var (
	jsNamedImportLineRe = regexp.MustCompile(`import\s*\{([^}]*)\}\s*from\s*['"][^'"]+['"]`)
	jsDefaultImportRe   = regexp.MustCompile(`import\s+(\w+)\s*from\s*['"][^'"]+['"]`)
	jsStarImportRe      = regexp.MustCompile(`import\s*\*\s*as\s+(\w+)\s*from\s*['"][^'"]+['"]`)
)

// CheckUnusedImportsJSLike applies the regex extraction spec §4.7 asks for
// on TS/JS sources: any name appearing only on its own import line is
// unused.
func CheckUnusedImportsJSLike(f File) []finding.Finding {
	var out []finding.Finding
	for lineIdx, line := range strings.Split(f.Content, "\n") {
		lineNo := lineIdx + 1
		var names []string
		if m := jsNamedImportLineRe.FindStringSubmatch(line); m != nil {
			for _, n := range strings.Split(m[1], ",") {
				n = strings.TrimSpace(n)
				if n == "" {
					continue
				}
				if parts := strings.SplitN(n, " as ", 2); len(parts) == 2 {
					n = strings.TrimSpace(parts[1])
				}
				names = append(names, n)
			}
		}
		if m := jsDefaultImportRe.FindStringSubmatch(line); m != nil {
			names = append(names, m[1])
		}
		if m := jsStarImportRe.FindStringSubmatch(line); m != nil {
			names = append(names, m[1])
		}
		for _, name := range names {
			if countOccurrencesExcludingLine(f.Content, name, lineNo) == 0 {
				out = append(out, finding.Finding{
					RuleID:     "unused_import",
					Severity:   finding.Low,
					File:       f.Path,
					Line:       lineNo,
					Title:      "Unused import",
					Message:    "imported name '" + name + "' is never used",
					Type:       "unused_import",
					Engine:     "consistency_checker",
					Confidence: 85,
				})
			}
		}
	}
	return out
}

var pyAssignRe = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*=\s*[^=]`)

// CheckUnusedVariablesPython approximates the per-scope visitor of spec
// §4.7 with a per-function-body scan: ignore names starting with '_',
// 'self', 'cls'; a name assigned but never loaded elsewhere in the same
// function body is medium severity. Module-level assignments are not
// checked, preserving the spec §9 behavior note.
func CheckUnusedVariablesPython(p *parser.Parser, f File) []finding.Finding {
	view, err := p.Parse(f.Content, "python")
	if err != nil || !view.Valid {
		return nil
	}
	var out []finding.Finding
	var scan func(body string, baseLine int)
	scan = func(body string, baseLine int) {
		lines := strings.Split(body, "\n")
		for i, line := range lines {
			m := pyAssignRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := m[1]
			if name == "" || strings.HasPrefix(name, "_") || name == "self" || name == "cls" {
				continue
			}
			if countOccurrencesExcludingLine(body, name, i+1) == 0 {
				out = append(out, finding.Finding{
					RuleID:     "unused_variable",
					Severity:   finding.Medium,
					File:       f.Path,
					Line:       baseLine + i,
					Title:      "Unused variable",
					Message:    "variable '" + name + "' is assigned but never used",
					Type:       "unused_variable",
					Engine:     "consistency_checker",
					Confidence: 65,
				})
			}
		}
	}
	for _, fn := range view.Functions {
		scan(fn.Body, fn.Line)
	}
	for _, cls := range view.Classes {
		for _, m := range cls.Methods {
			scan(m.Body, m.Line)
		}
	}
	return out
}

var jsDeclRe = regexp.MustCompile(`(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=`)

// CheckUnusedVariablesJSLike is the regex counterpart for TS/JS.
func CheckUnusedVariablesJSLike(f File) []finding.Finding {
	var out []finding.Finding
	for lineIdx, line := range strings.Split(f.Content, "\n") {
		lineNo := lineIdx + 1
		m := jsDeclRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		if countOccurrencesExcludingLine(f.Content, name, lineNo) == 0 {
			out = append(out, finding.Finding{
				RuleID:     "unused_variable",
				Severity:   finding.Medium,
				File:       f.Path,
				Line:       lineNo,
				Title:      "Unused variable",
				Message:    "variable '" + name + "' is assigned but never used",
				Type:       "unused_variable",
				Engine:     "consistency_checker",
				Confidence: 65,
			})
		}
	}
	return out
}
