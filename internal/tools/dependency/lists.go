package dependency

import "github.com/collegue/specmcp/internal/finding"

// knownMaliciousPackages is a per-ecosystem table of names known to have
// been published as typosquats or supply-chain attacks. Ported as data,
// not derived — spec §9 treats these tables the same way it treats the
// suggest_tools keyword table: port the exact list, don't invent one.
var knownMaliciousPackages = map[Ecosystem]map[string]string{
	EcosystemPyPI: {
		"request":     "typosquat of 'requests'",
		"python3-dev": "known malicious package impersonating a dev package",
		"urllib":      "typosquat of 'urllib3'",
		"jinja-sql":   "known malicious package",
	},
	EcosystemNpm: {
		"cross-env.js":  "typosquat of 'cross-env'",
		"electorn":      "typosquat of 'electron'",
		"discord.js-api": "known malicious package impersonating 'discord.js'",
		"babelcli":      "typosquat of 'babel-cli'",
	},
}

// deprecatedReplacement maps a deprecated package to its recommended
// replacement, per ecosystem.
var deprecatedReplacement = map[Ecosystem]map[string]string{
	EcosystemPyPI: {
		"pycrypto": "pycryptodome",
		"nose":     "pytest",
		"distribute": "setuptools",
	},
	EcosystemNpm: {
		"request": "node-fetch or axios",
		"gulp-util": "individual gulp plugins (ansi-colors, plugin-error, ...)",
	},
}

// Lists is an optional blocklist/allowlist pair supplied by the caller.
type Lists struct {
	Blocklist []string
	Allowlist []string
}

func contains(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

// checkLists evaluates a dependency against the known tables in the order
// spec §4.5 dictates: blocklist, allowlist, known-malicious, deprecated.
func checkLists(d Dependency, lists Lists) []finding.Finding {
	var out []finding.Finding

	if contains(lists.Blocklist, d.Name) {
		out = append(out, finding.Finding{
			RuleID:   "blocked",
			Severity: finding.High,
			Title:    "Blocked dependency",
			Message:  d.Name + " is on the configured blocklist",
			Type:     "blocked",
			Engine:   "dependency_guard",
		})
	}

	if len(lists.Allowlist) > 0 && !contains(lists.Allowlist, d.Name) {
		out = append(out, finding.Finding{
			RuleID:   "not_allowed",
			Severity: finding.Medium,
			Title:    "Dependency not on allowlist",
			Message:  d.Name + " is not present in the configured allowlist",
			Type:     "not_allowed",
			Engine:   "dependency_guard",
		})
	}

	if reason, ok := knownMaliciousPackages[d.Ecosystem][d.Name]; ok {
		out = append(out, finding.Finding{
			RuleID:   "malicious",
			Severity: finding.Critical,
			Title:    "Known malicious package",
			Message:  d.Name + ": " + reason,
			Type:     "malicious",
			Engine:   "dependency_guard",
		})
	}

	if replacement, ok := deprecatedReplacement[d.Ecosystem][d.Name]; ok {
		out = append(out, finding.Finding{
			RuleID:      "deprecated",
			Severity:    finding.Low,
			Title:       "Deprecated package",
			Message:     d.Name + " is deprecated",
			Remediation: "Use " + replacement + " instead",
			Type:        "deprecated",
			Engine:      "dependency_guard",
		})
	}

	return out
}
