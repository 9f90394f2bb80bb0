package parser

import "strings"

// detectLanguage auto-detects the language of a code buffer by scoring
// keyword/sigil occurrences (spec §4.1): `<?php`, `def `, `function `,
// `interface `, `=>`, `::`. The highest-scoring language wins; ties favor
// python, then typescript, then javascript, then php, matching the rough
// specificity order of their signal set.
func detectLanguage(code string) string {
	scores := map[string]int{
		"python":     0,
		"typescript": 0,
		"javascript": 0,
		"php":        0,
	}

	if strings.Contains(code, "<?php") {
		scores["php"] += 5
	}
	scores["php"] += strings.Count(code, "::")
	scores["python"] += strings.Count(code, "def ")
	scores["python"] += strings.Count(code, "import ") + strings.Count(code, "from ")
	scores["python"] += strings.Count(code, "self.")
	scores["javascript"] += strings.Count(code, "function ")
	scores["javascript"] += strings.Count(code, "=>")
	scores["javascript"] += strings.Count(code, "const ") + strings.Count(code, "let ")
	scores["typescript"] += strings.Count(code, "interface ")
	scores["typescript"] += strings.Count(code, ": string") + strings.Count(code, ": number") + strings.Count(code, ": boolean")
	if strings.Contains(code, "=>") {
		scores["typescript"] += strings.Count(code, "=>")
	}

	order := []string{"python", "typescript", "javascript", "php"}
	best := ""
	bestScore := 0
	for _, lang := range order {
		if scores[lang] > bestScore {
			best = lang
			bestScore = scores[lang]
		}
	}
	return best
}
