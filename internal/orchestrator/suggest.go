package orchestrator

import "strings"

// keywordCategoryBoosts is the bilingual (French/English) keyword-to-category
// table from the Python original's `core/orchestrator.py`, ported verbatim
// as data per spec §9's explicit instruction ("spec treats both as data,
// not behavior — implementers must port the exact table") and §3 ("suggest_tools:
// ... category/action boosts from a fixed keyword table").
var keywordCategoryBoosts = map[string]string{
	"générer":        "generation",
	"generate":       "generation",
	"génération":     "generation",
	"generation":     "generation",
	"expliquer":      "explanation",
	"explain":        "explanation",
	"explication":    "explanation",
	"explanation":    "explanation",
	"documenter":     "documentation",
	"document":       "documentation",
	"documentation":  "documentation",
	"refactoriser":   "refactoring",
	"refactor":       "refactoring",
	"refactoring":    "refactoring",
	"tester":         "testing",
	"test":           "testing",
	"tests":          "testing",
	"sécurité":       "security",
	"security":       "security",
	"secret":         "security",
	"secrets":        "security",
	"dépendance":     "dependency",
	"dépendances":    "dependency",
	"dependency":     "dependency",
	"dependencies":   "dependency",
	"vulnérabilité":  "security",
	"vulnerability":  "security",
	"impact":         "impact",
	"cohérence":      "consistency",
	"consistency":    "consistency",
	"infrastructure": "iac",
	"iac":            "iac",
	"kubernetes":     "iac",
	"terraform":      "iac",
	"docker":         "iac",
}

const (
	sharedWordWeight    = 2
	nameLiteralBoost    = 5
	categoryKeywordBoost = 4
	languageContextBoost = 3
	currentFileBoost     = 2
)

// SuggestContext is the optional context `suggest_tools` consults for the
// language-context and current-file boosts.
type SuggestContext struct {
	LanguageContext *LanguageContext
	CurrentFile     string
}

// LanguageContext mirrors the session context's language_context field.
type LanguageContext struct {
	Language string
}

// Suggestion is one ranked entry returned by SuggestTools.
type Suggestion struct {
	Name  string
	Score int
}

// SuggestTools ranks every registered tool against query using the
// deterministic scoring rubric from spec §4.3. Tools scoring 0 are
// excluded; ties are broken by registration order (the order tools were
// iterated in, which is registration order here).
func (o *Orchestrator) SuggestTools(query string, sc *SuggestContext) []Suggestion {
	queryLower := strings.ToLower(query)
	queryWords := wordSet(queryLower)

	o.mu.RLock()
	defer o.mu.RUnlock()

	var out []Suggestion
	for _, name := range o.order {
		d := o.tools[name].Descriptor()
		score := 0

		descWords := wordSet(strings.ToLower(d.Description))
		for w := range queryWords {
			if descWords[w] {
				score += sharedWordWeight
			}
		}

		if strings.Contains(queryLower, strings.ToLower(d.Name)) {
			score += nameLiteralBoost
		}

		for kw, category := range keywordCategoryBoosts {
			if strings.Contains(queryLower, kw) && strings.EqualFold(category, d.Category) {
				score += categoryKeywordBoost
				break
			}
		}

		if sc != nil && sc.LanguageContext != nil && sc.LanguageContext.Language != "" {
			if strings.Contains(strings.ToLower(d.Category), strings.ToLower(sc.LanguageContext.Language)) {
				score += languageContextBoost
			}
		}

		if sc != nil && sc.CurrentFile != "" && mentionsFiles(d.Description) {
			score += currentFileBoost
		}

		if score > 0 {
			out = append(out, Suggestion{Name: name, Score: score})
		}
	}

	// Stable sort by score descending; ties keep registration order because
	// the input slice is already in registration order and sort is stable.
	stableSortByScoreDesc(out)
	return out
}

func wordSet(s string) map[string]bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_')
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f != "" {
			set[f] = true
		}
	}
	return set
}

func mentionsFiles(description string) bool {
	d := strings.ToLower(description)
	return strings.Contains(d, "file") || strings.Contains(d, "fichier")
}

func stableSortByScoreDesc(s []Suggestion) {
	// insertion sort preserves stability and is plenty fast for a tool catalog.
	for i := 1; i < len(s); i++ {
		j := i
		for j > 0 && s[j-1].Score < s[j].Score {
			s[j-1], s[j] = s[j], s[j-1]
			j--
		}
	}
}
