package iac

import (
	"strings"

	"github.com/collegue/specmcp/internal/finding"
)

// ScanWithRules applies a kind's rule set (baseline, plus strict if the
// profile asks for it) to content as pre-compiled regex, deriving the
// reported line from the match offset (spec §4.8).
func ScanWithRules(kind Kind, path, content string, profile finding.Profile) ([]finding.Finding, error) {
	rules, err := rulesForProfile(kind, profile)
	if err != nil {
		return nil, err
	}
	return applyRules(rules, path, content)
}

func applyRules(rules []finding.Rule, path, content string) ([]finding.Finding, error) {
	var out []finding.Finding
	for _, rule := range rules {
		re, err := compileCached(rule.Pattern)
		if err != nil {
			return nil, err
		}
		loc := re.FindStringIndex(content)
		switch rule.CheckType {
		case finding.Presence:
			if loc == nil {
				continue
			}
			out = append(out, ruleFinding(rule, path, lineForOffset(content, loc[0])))
		case finding.Absence:
			if loc != nil {
				continue
			}
			out = append(out, ruleFinding(rule, path, 1))
		default:
			if loc != nil {
				out = append(out, ruleFinding(rule, path, lineForOffset(content, loc[0])))
			}
		}
	}
	return out, nil
}

func ruleFinding(rule finding.Rule, path string, line int) finding.Finding {
	return finding.Finding{
		RuleID:      rule.ID,
		Severity:    rule.Severity,
		File:        path,
		Line:        line,
		Title:       rule.Title,
		Message:     rule.Description,
		Remediation: rule.Remediation,
		References:  rule.References,
		Type:        string(rule.CheckType),
		Engine:      "iac_guardrails",
	}
}

func lineForOffset(content string, offset int) int {
	if offset <= 0 {
		return 1
	}
	return strings.Count(content[:offset], "\n") + 1
}
