package consistency

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/finding"
	"github.com/collegue/specmcp/internal/parser"
)

// Tool implements contract.Tool for the repo consistency checker.
type Tool struct {
	parser *parser.Parser
}

// New builds the repo_consistency_check Tool.
func New(p *parser.Parser) *Tool {
	return &Tool{parser: p}
}

func (t *Tool) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Name:         "repo_consistency_check",
		Description:  "Flags unused imports/variables, dead code, cross-file duplication, and (deep mode) unresolved symbols",
		Category:     "quality",
		RequiredArgs: []string{"files"},
		OptionalArgs: []string{"checks", "min_confidence", "min_lines", "deep"},
		Suspendable:  true,
	}
}

func (t *Tool) RequestSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["files"],
		"properties": {
			"files": {"type": "array"},
			"checks": {"type": "array"},
			"min_confidence": {"type": "integer"},
			"min_lines": {"type": "integer"},
			"deep": {"type": "boolean"}
		}
	}`)
}

func (t *Tool) ResponseSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["findings", "checks_performed", "counts"]
	}`)
}

var allChecks = []string{
	"unused_imports", "unused_variables", "dead_code", "duplication", "unresolved_symbols",
}

func (t *Tool) Core(ec *contract.ExecContext, args map[string]any) (map[string]any, error) {
	files, err := decodeFiles(args["files"])
	if err != nil {
		return nil, contract.NewValidationError(err.Error())
	}
	if len(files) == 0 {
		return nil, contract.NewValidationError("files must be a non-empty array")
	}

	checks := stringSliceArg(args, "checks")
	if len(checks) == 0 {
		checks = allChecks
	}
	deep := boolArg(args, "deep")
	minLines := intArg(args, "min_lines", 6)
	minConfidence := intArg(args, "min_confidence", 0)

	enabled := map[string]bool{}
	for _, c := range checks {
		enabled[c] = true
	}

	var findings []finding.Finding
	var performed []string

	if enabled["unused_imports"] {
		performed = append(performed, "unused_imports")
		for _, f := range files {
			switch languageFor(f) {
			case "python":
				findings = append(findings, CheckUnusedImportsPython(t.parser, f)...)
			case "typescript", "javascript":
				findings = append(findings, CheckUnusedImportsJSLike(f)...)
			}
		}
	}
	if enabled["unused_variables"] {
		performed = append(performed, "unused_variables")
		for _, f := range files {
			switch languageFor(f) {
			case "python":
				findings = append(findings, CheckUnusedVariablesPython(t.parser, f)...)
			case "typescript", "javascript":
				findings = append(findings, CheckUnusedVariablesJSLike(f)...)
			}
		}
	}
	if enabled["dead_code"] {
		performed = append(performed, "dead_code")
		findings = append(findings, CheckDeadCodePython(t.parser, files)...)
	}
	if enabled["duplication"] {
		performed = append(performed, "duplication")
		findings = append(findings, CheckDuplication(files, minLines)...)
	}
	if enabled["unresolved_symbols"] && deep {
		performed = append(performed, "unresolved_symbols")
		for _, f := range files {
			if languageFor(f) == "python" {
				findings = append(findings, CheckUnresolvedSymbolsPython(t.parser, f)...)
			}
		}
	}

	if minConfidence > 0 {
		filtered := findings[:0]
		for _, f := range findings {
			if f.Confidence == 0 || f.Confidence >= minConfidence {
				filtered = append(filtered, f)
			}
		}
		findings = filtered
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].RuleID < findings[j].RuleID
	})

	counts := finding.CountsBySeverity(findings)
	return map[string]any{
		"findings":         findings,
		"checks_performed": performed,
		"counts":           counts,
		"summary":          summarize(findings, performed),
	}, nil
}

func summarize(findings []finding.Finding, performed []string) string {
	return fmt.Sprintf("%d finding(s) across %d check(s): %v", len(findings), len(performed), performed)
}

func decodeFiles(raw any) ([]File, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("files must be an array of {path, content, language?}")
	}
	out := make([]File, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("each file entry must be an object")
		}
		f := File{
			Path:     stringField(m, "path"),
			Content:  stringField(m, "content"),
			Language: stringField(m, "language"),
		}
		if f.Path == "" {
			return nil, fmt.Errorf("each file entry requires a non-empty path")
		}
		out = append(out, f)
	}
	return out, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}
