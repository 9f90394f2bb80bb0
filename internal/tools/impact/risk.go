package impact

import "regexp"

// RiskCategory is one of the five risk families spec §4.9 scans for.
type RiskCategory string

const (
	BreakingChange RiskCategory = "breaking_change"
	Security       RiskCategory = "security"
	DataMigration  RiskCategory = "data_migration"
	Performance    RiskCategory = "performance"
	Compatibility  RiskCategory = "compat"
)

// Risk is one detected risk signal.
type Risk struct {
	Category RiskCategory `json:"category"`
	Reason   string       `json:"reason"`
}

var riskPatterns = map[RiskCategory][]*regexp.Regexp{
	BreakingChange: {
		regexp.MustCompile(`(?i)\bbreaking\s+change\b`),
		regexp.MustCompile(`(?i)\bremove\s+(?:the\s+)?(?:public\s+)?(?:api|method|endpoint|function)\b`),
		regexp.MustCompile(`(?i)\bchange\s+(?:the\s+)?signature\b`),
	},
	Security: {
		regexp.MustCompile(`(?i)\b(auth|authentication|authorization|password|token|secret|permission)\b`),
		regexp.MustCompile(`(?i)\bsql\s+injection\b`),
	},
	DataMigration: {
		regexp.MustCompile(`(?i)\bmigrat(e|ion)\b`),
		regexp.MustCompile(`(?i)\balter\s+table\b`),
		regexp.MustCompile(`(?i)\bschema\s+change\b`),
	},
	Performance: {
		regexp.MustCompile(`(?i)\b(n\+1|slow\s+quer|performance|latency|timeout)\b`),
	},
	Compatibility: {
		regexp.MustCompile(`(?i)\b(backward|backwards)[\s-]compat`),
		regexp.MustCompile(`(?i)\bdeprecat`),
	},
}

var riskVerbs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(supprimer|delete)\b`),
	regexp.MustCompile(`(?i)\b(renommer|rename)\b`),
	regexp.MustCompile(`(?i)\bapi\b`),
}

var riskVerbCategory = []RiskCategory{BreakingChange, BreakingChange, Compatibility}

// AnalyzeRisks scans intent, diff, and file contents against the pattern
// families, plus derives additional risks from the intent's action verbs
// (spec §4.9).
func AnalyzeRisks(intent, diff string, files []File) []Risk {
	corpus := intent + "\n" + diff
	for _, f := range files {
		corpus += "\n" + f.Content
	}

	seen := map[RiskCategory]bool{}
	var out []Risk
	for category, patterns := range riskPatterns {
		for _, re := range patterns {
			if re.MatchString(corpus) {
				if !seen[category] {
					seen[category] = true
					out = append(out, Risk{Category: category, Reason: "matched pattern family for " + string(category)})
				}
				break
			}
		}
	}

	for i, re := range riskVerbs {
		if re.MatchString(intent) {
			category := riskVerbCategory[i]
			if !seen[category] {
				seen[category] = true
				out = append(out, Risk{Category: category, Reason: "intent verb implies " + string(category)})
			}
		}
	}
	return out
}
