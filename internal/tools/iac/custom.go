package iac

import (
	"context"
	"encoding/json"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/finding"
)

// applyCustomPolicies decodes the caller-supplied custom_policies argument —
// each entry either a bare {pattern, severity} or a full rule object — and
// applies them across every input file (spec §4.8).
func applyCustomPolicies(raw any, files []FileInput) []finding.Finding {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var rules []finding.Rule
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := m["id"].(string); ok && id != "" {
			rules = append(rules, decodeFullRule(m))
			continue
		}
		pattern, _ := m["pattern"].(string)
		severity, _ := m["severity"].(string)
		if pattern == "" {
			continue
		}
		rules = append(rules, finding.Rule{
			ID:        "CUSTOM-" + pattern,
			Title:     "Custom policy violation",
			Pattern:   pattern,
			CheckType: finding.Presence,
			Severity:  finding.Severity(orDefault(severity, string(finding.Medium))),
		})
	}
	if len(rules) == 0 {
		return nil
	}

	var out []finding.Finding
	for _, f := range files {
		found, err := applyRules(rules, f.Path, f.Content)
		if err != nil {
			continue
		}
		out = append(out, found...)
	}
	return out
}

func decodeFullRule(m map[string]any) finding.Rule {
	r := finding.Rule{}
	r.ID, _ = m["id"].(string)
	r.Title, _ = m["title"].(string)
	r.Description, _ = m["description"].(string)
	r.Pattern, _ = m["pattern"].(string)
	checkType, _ := m["check_type"].(string)
	r.CheckType = finding.CheckKind(orDefault(checkType, string(finding.Presence)))
	severity, _ := m["severity"].(string)
	r.Severity = finding.Severity(orDefault(severity, string(finding.Medium)))
	r.Remediation, _ = m["remediation"].(string)
	return r
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

type blendedScore struct {
	security   float64
	compliance float64
	riskLevel  string
}

// deepAnalysisBlend invokes the LLM with a structured summary of the files
// and findings, expects {security_score, compliance_score, risk_level,
// insights[]}, and blends it 60/40 (LLM/heuristic) per spec §4.8. Any
// error anywhere falls back to pure heuristics (ok=false).
func deepAnalysisBlend(
	ctx context.Context,
	llm contract.LLMHelper,
	files []FileInput,
	findings []finding.Finding,
	heuristicSecurity, heuristicCompliance float64,
) (blendedScore, []string, bool) {
	if llm == nil || !llm.Available() {
		return blendedScore{}, nil, false
	}

	summary, err := buildDeepAnalysisPrompt(files, findings)
	if err != nil {
		return blendedScore{}, nil, false
	}

	res, err := llm.SampleLLM(ctx, contract.SampleRequest{
		SystemPrompt: "You are a security reviewer for infrastructure-as-code. Respond with JSON only.",
		Prompt:       summary,
		ResultSchema: map[string]any{
			"security_score":   "number",
			"compliance_score": "number",
			"risk_level":       "string",
			"insights":         "array",
		},
	})
	if err != nil || res == nil {
		return blendedScore{}, nil, false
	}

	parsed := res.Structured
	if parsed == nil {
		parsed, err = contract.ParseStructured(res.Text)
		if err != nil {
			return blendedScore{}, nil, false
		}
	}

	llmSecurity, ok1 := parsed["security_score"].(float64)
	llmCompliance, ok2 := parsed["compliance_score"].(float64)
	riskLevel, _ := parsed["risk_level"].(string)
	if !ok1 || !ok2 {
		return blendedScore{}, nil, false
	}

	insights := decodeInsights(parsed["insights"])

	return blendedScore{
		security:   0.6*llmSecurity + 0.4*heuristicSecurity,
		compliance: 0.6*llmCompliance + 0.4*heuristicCompliance,
		riskLevel:  riskLevel,
	}, insights, true
}

func buildDeepAnalysisPrompt(files []FileInput, findings []finding.Finding) (string, error) {
	summary := map[string]any{
		"file_count":    len(files),
		"finding_count": len(findings),
		"findings":      findings,
	}
	encoded, err := json.Marshal(summary)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeInsights(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
