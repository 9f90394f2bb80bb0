package consistency

import (
	"regexp"
	"strings"

	"github.com/collegue/specmcp/internal/finding"
	"github.com/collegue/specmcp/internal/parser"
)

// pythonBuiltins is the fixed list of names always considered resolved,
// independent of what the file itself defines.
var pythonBuiltins = map[string]bool{
	"True": true, "False": true, "None": true, "self": true, "cls": true,
	"print": true, "len": true, "range": true, "str": true, "int": true,
	"float": true, "bool": true, "list": true, "dict": true, "set": true,
	"tuple": true, "object": true, "type": true, "isinstance": true,
	"super": true, "open": true, "enumerate": true, "zip": true, "map": true,
	"filter": true, "sorted": true, "reversed": true, "min": true, "max": true,
	"sum": true, "abs": true, "all": true, "any": true, "next": true,
	"iter": true, "getattr": true, "setattr": true, "hasattr": true,
	"Exception": true, "ValueError": true, "TypeError": true, "KeyError": true,
	"IndexError": true, "RuntimeError": true, "StopIteration": true,
	"AttributeError": true, "NotImplementedError": true, "__name__": true,
	"__file__": true, "__init__": true, "__all__": true, "staticmethod": true,
	"classmethod": true, "property": true, "input": true, "format": true,
	"round": true, "id": true, "repr": true, "vars": true, "dir": true,
}

var nameLoadRe = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\b`)

// CheckUnresolvedSymbolsPython is the deep-mode check of spec §4.7: collect
// every definition in the file (imports, top-level assignments, functions
// and their parameters, classes and their methods) plus the fixed builtin
// list, then flag each identifier token on a non-import line that is
// outside that scope and not a keyword or literal, once per name, as high
// severity with confidence 60. The scan is a regex over the text, so
// attribute names and words inside strings or comments are tokens too.
func CheckUnresolvedSymbolsPython(p *parser.Parser, f File) []finding.Finding {
	view, err := p.Parse(f.Content, "python")
	if err != nil || !view.Valid {
		return nil
	}

	scope := map[string]bool{}
	for _, imp := range view.Imports {
		name := imp.Alias
		if name == "" {
			name = imp.Name
		}
		if name == "" {
			name = strings.SplitN(imp.Module, ".", 2)[0]
		}
		scope[name] = true
	}
	for _, fn := range view.Functions {
		scope[fn.Name] = true
		for _, param := range fn.Params {
			scope[param.Name] = true
		}
	}
	for _, cls := range view.Classes {
		scope[cls.Name] = true
		for _, m := range cls.Methods {
			scope[m.Name] = true
			for _, param := range m.Params {
				scope[param.Name] = true
			}
		}
	}
	for _, v := range view.Variables {
		scope[v.Name] = true
	}

	var out []finding.Finding
	seen := map[string]bool{}
	lines := strings.Split(f.Content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ") {
			continue
		}
		for _, m := range nameLoadRe.FindAllString(line, -1) {
			if scope[m] || pythonBuiltins[m] {
				continue
			}
			if isLikelyKeywordOrLiteral(m) {
				continue
			}
			key := m
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, finding.Finding{
				RuleID:     "unresolved_symbol",
				Severity:   finding.High,
				File:       f.Path,
				Line:       i + 1,
				Title:      "Unresolved symbol",
				Message:    "name '" + m + "' has no matching import, definition, or builtin",
				Type:       "unresolved_symbol",
				Engine:     "consistency_checker",
				Confidence: 60,
			})
		}
	}
	return out
}

var pythonKeywords = map[string]bool{
	"def": true, "class": true, "if": true, "elif": true, "else": true,
	"for": true, "while": true, "try": true, "except": true, "finally": true,
	"with": true, "as": true, "return": true, "yield": true, "break": true,
	"continue": true, "pass": true, "raise": true, "import": true, "from": true,
	"global": true, "nonlocal": true, "lambda": true, "and": true, "or": true,
	"not": true, "in": true, "is": true, "assert": true, "del": true,
	"async": true, "await": true,
}

func isLikelyKeywordOrLiteral(name string) bool {
	return pythonKeywords[name]
}
