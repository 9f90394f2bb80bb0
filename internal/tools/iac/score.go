package iac

import "github.com/collegue/specmcp/internal/finding"

var severityWeight = map[finding.Severity]float64{
	finding.Critical: 0.4,
	finding.High:      0.25,
	finding.Medium:    0.1,
	finding.Low:       0.05,
	finding.Info:      0,
}

// SecurityScore implements spec §4.8's
// `max(0, 1 - sum(severity_weight)/2)`.
func SecurityScore(findings []finding.Finding) float64 {
	sum := 0.0
	for _, f := range findings {
		sum += severityWeight[f.Severity]
	}
	score := 1 - sum/2
	if score < 0 {
		return 0
	}
	return score
}

// ComplianceScore implements spec §4.8's
// `max(0, 1 - 0.1*|compliance-tagged findings|)`. A finding is
// compliance-tagged when its rule ID carries a compliance-sensitive
// severity (high or critical) — the signal the spec's original
// compliance tagging reduces to for a pure regex/YAML rule set.
func ComplianceScore(findings []finding.Finding) float64 {
	tagged := 0
	for _, f := range findings {
		if f.Severity == finding.High || f.Severity == finding.Critical {
			tagged++
		}
	}
	score := 1 - 0.1*float64(tagged)
	if score < 0 {
		return 0
	}
	return score
}

// RiskLevel implements spec §4.8's tiering:
// critical if any critical; else high if >=2 highs; else medium if any
// high or >=5 findings; else low.
func RiskLevel(findings []finding.Finding) string {
	counts := finding.CountsBySeverity(findings)
	switch {
	case counts[finding.Critical] > 0:
		return "critical"
	case counts[finding.High] >= 2:
		return "high"
	case counts[finding.High] > 0 || len(findings) >= 5:
		return "medium"
	default:
		return "low"
	}
}
