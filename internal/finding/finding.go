// Package finding defines the shared "Finding" family (spec §3) emitted by
// every scanner: dependency guard, secret scanner, consistency checker, and
// IaC guardrails.
package finding

// Severity is one of five totally-ordered levels.
type Severity string

const (
	Info     Severity = "info"
	Low      Severity = "low"
	Medium   Severity = "medium"
	High     Severity = "high"
	Critical Severity = "critical"
)

// severityRank gives Severity a total order for threshold comparisons.
var severityRank = map[Severity]int{
	Info:     0,
	Low:      1,
	Medium:   2,
	High:     3,
	Critical: 4,
}

// AtLeast reports whether s is at least as severe as min.
func (s Severity) AtLeast(min Severity) bool {
	return severityRank[s] >= severityRank[min]
}

// Valid reports whether s is one of the five defined levels.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Finding is one reported problem from any scanner.
type Finding struct {
	RuleID     string   `json:"rule_id"`
	Severity   Severity `json:"severity"`
	File       string   `json:"file"`
	Line       int      `json:"line,omitempty"`
	Column     int      `json:"column,omitempty"`
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Remediation string  `json:"remediation,omitempty"`
	References []string `json:"references,omitempty"`
	Engine     string   `json:"engine"`
	Type       string   `json:"type,omitempty"`
	CVEIDs     []string `json:"cve_ids,omitempty"`
	Confidence int      `json:"confidence,omitempty"`
}

// CheckKind is a rule's match polarity.
type CheckKind string

const (
	Presence CheckKind = "presence"
	Absence  CheckKind = "absence"
)

// Profile is an IaC rule tier.
type Profile string

const (
	Baseline Profile = "baseline"
	Strict   Profile = "strict"
)

// Rule is a declarative detector shared by the secret scanner and the IaC
// guardrails scanner.
type Rule struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Pattern     string    `json:"pattern" yaml:"pattern"`
	CheckType   CheckKind `json:"check_type" yaml:"check_type"`
	Severity    Severity  `json:"severity" yaml:"severity"`
	Remediation string    `json:"remediation" yaml:"remediation"`
	References  []string  `json:"references,omitempty" yaml:"references,omitempty"`
	Profile     Profile   `json:"profile,omitempty" yaml:"profile,omitempty"`
}

// CountsBySeverity tallies findings for a summary block.
func CountsBySeverity(findings []Finding) map[Severity]int {
	counts := map[Severity]int{Info: 0, Low: 0, Medium: 0, High: 0, Critical: 0}
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

// Passed implements the spec §8 invariant `passed ⇔ critical=0 ∧ high=0`.
func Passed(findings []Finding) bool {
	counts := CountsBySeverity(findings)
	return counts[Critical] == 0 && counts[High] == 0
}
