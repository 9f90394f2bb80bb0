package consistency

import (
	"strings"

	"github.com/collegue/specmcp/internal/finding"
	"github.com/collegue/specmcp/internal/parser"
)

// CheckDeadCodePython flags any top-level def/class whose name appears at
// most once across the full concatenated corpus (its own definition),
// medium severity with confidence 70 (spec §4.7).
func CheckDeadCodePython(p *parser.Parser, files []File) []finding.Finding {
	corpus := make([]string, 0, len(files))
	for _, f := range files {
		corpus = append(corpus, f.Content)
	}
	joined := strings.Join(corpus, "\n")

	var out []finding.Finding
	for _, f := range files {
		if languageFor(f) != "python" {
			continue
		}
		view, err := p.Parse(f.Content, "python")
		if err != nil || !view.Valid {
			continue
		}
		for _, fn := range view.Functions {
			if countOccurrencesAnywhere(joined, fn.Name) <= 1 {
				out = append(out, deadCodeFinding(f.Path, fn.Line, fn.Name, "function"))
			}
		}
		for _, cls := range view.Classes {
			if countOccurrencesAnywhere(joined, cls.Name) <= 1 {
				out = append(out, deadCodeFinding(f.Path, cls.Line, cls.Name, "class"))
			}
		}
	}
	return out
}

func deadCodeFinding(path string, line int, name, kind string) finding.Finding {
	return finding.Finding{
		RuleID:     "dead_code",
		Severity:   finding.Medium,
		File:       path,
		Line:       line,
		Title:      "Potentially dead code",
		Message:    kind + " '" + name + "' is defined but never referenced elsewhere",
		Type:       "dead_code",
		Engine:     "consistency_checker",
		Confidence: 70,
	}
}

func countOccurrencesAnywhere(corpus, name string) int {
	re := wordBoundaryRe(name)
	return len(re.FindAllStringIndex(corpus, -1))
}
