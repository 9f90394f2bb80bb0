// Package dependency implements the Registry & Vulnerability Guard of spec
// §4.5: manifest parsing, blocklist/allowlist/known-bad checks, registry
// existence probes, and OSV batch vulnerability scanning.
package dependency

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// Ecosystem is the OSV ecosystem string for a dependency.
type Ecosystem string

const (
	EcosystemPyPI Ecosystem = "PyPI"
	EcosystemNpm  Ecosystem = "npm"
)

// Dependency is one extracted manifest entry.
type Dependency struct {
	Name      string
	Version   string // may be empty (no pinned version, e.g. a bare requirement)
	Ecosystem Ecosystem
}

var requirementLineRe = regexp.MustCompile(`^\s*([A-Za-z0-9_.\-]+)(\[[^\]]*\])?\s*(==|>=|<=|~=|!=|>|<)?\s*([A-Za-z0-9_.\-]*)`)

// parseRequirementsTxt extracts name + version specifier from PEP 508 lines.
func parseRequirementsTxt(content string) []Dependency {
	var deps []Dependency
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		m := requirementLineRe.FindStringSubmatch(line)
		if m == nil || m[1] == "" {
			continue
		}
		deps = append(deps, Dependency{Name: strings.ToLower(m[1]), Version: m[4], Ecosystem: EcosystemPyPI})
	}
	return deps
}

type pyProjectDoc struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
}

// parsePyProjectToml extracts project.dependencies entries (spec §4.5).
func parsePyProjectToml(content string) []Dependency {
	var doc pyProjectDoc
	if _, err := toml.Decode(content, &doc); err != nil {
		return nil
	}
	var deps []Dependency
	for _, raw := range doc.Project.Dependencies {
		m := requirementLineRe.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil || m[1] == "" {
			continue
		}
		deps = append(deps, Dependency{Name: strings.ToLower(m[1]), Version: m[4], Ecosystem: EcosystemPyPI})
	}
	return deps
}

type packageJSONDoc struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// parsePackageJSON unions dependencies and devDependencies (spec §4.5).
func parsePackageJSON(content string) []Dependency {
	var doc packageJSONDoc
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil
	}
	seen := map[string]bool{}
	var deps []Dependency
	add := func(m map[string]string) {
		for name, version := range m {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			deps = append(deps, Dependency{Name: name, Version: version, Ecosystem: EcosystemNpm})
		}
	}
	add(doc.Dependencies)
	add(doc.DevDependencies)
	return deps
}

// packageLockV1 is the shape of a v1 lockfile: top-level "dependencies".
type packageLockV1 struct {
	LockfileVersion int `json:"lockfileVersion"`
	Dependencies    map[string]struct {
		Version string `json:"version"`
	} `json:"dependencies"`
}

// packageLockV2V3 is the shape used by npm v7+: "packages" keyed by path.
type packageLockV2V3 struct {
	LockfileVersion int `json:"lockfileVersion"`
	Packages        map[string]struct {
		Version         string            `json:"version"`
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	} `json:"packages"`
}

// parsePackageLockJSON prefers v2/v3 packages[""].dependencies/devDependencies,
// falling back to v1 top-level dependencies (spec §4.5).
func parsePackageLockJSON(content string) []Dependency {
	var v2 packageLockV2V3
	if err := json.Unmarshal([]byte(content), &v2); err == nil && v2.Packages != nil {
		if root, ok := v2.Packages[""]; ok && (len(root.Dependencies) > 0 || len(root.DevDependencies) > 0) {
			seen := map[string]bool{}
			var deps []Dependency
			add := func(m map[string]string) {
				for name, version := range m {
					if name == "" || seen[name] {
						continue
					}
					seen[name] = true
					deps = append(deps, Dependency{Name: name, Version: version, Ecosystem: EcosystemNpm})
				}
			}
			add(root.Dependencies)
			add(root.DevDependencies)
			return deps
		}
	}

	var v1 packageLockV1
	if err := json.Unmarshal([]byte(content), &v1); err == nil && len(v1.Dependencies) > 0 {
		var deps []Dependency
		for name, entry := range v1.Dependencies {
			if name == "" {
				continue
			}
			deps = append(deps, Dependency{Name: name, Version: entry.Version, Ecosystem: EcosystemNpm})
		}
		return deps
	}
	return nil
}

// parseFullPackageLock walks every "node_modules/..." entry in a v2/v3
// lockfile to get exact resolved versions for OSV scanning (spec §4.5).
func parseFullPackageLock(content string) []Dependency {
	var doc packageLockV2V3
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil
	}
	var deps []Dependency
	for path, entry := range doc.Packages {
		if path == "" || !strings.Contains(path, "node_modules/") {
			continue
		}
		name := path[strings.LastIndex(path, "node_modules/")+len("node_modules/"):]
		if name == "" || entry.Version == "" {
			// parsing never fabricates a package: missing names are dropped (spec §3).
			continue
		}
		deps = append(deps, Dependency{Name: name, Version: entry.Version, Ecosystem: EcosystemNpm})
	}
	return deps
}

// ManifestKind identifies which parser to apply.
type ManifestKind string

const (
	ManifestRequirementsTxt ManifestKind = "requirements.txt"
	ManifestPyProjectToml   ManifestKind = "pyproject.toml"
	ManifestPackageJSON     ManifestKind = "package.json"
	ManifestPackageLock     ManifestKind = "package-lock.json"
)

// DetectManifestKind guesses the manifest kind from a filename.
func DetectManifestKind(filename string) ManifestKind {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, "requirements.txt"):
		return ManifestRequirementsTxt
	case strings.HasSuffix(lower, "pyproject.toml"):
		return ManifestPyProjectToml
	case strings.HasSuffix(lower, "package-lock.json"):
		return ManifestPackageLock
	case strings.HasSuffix(lower, "package.json"):
		return ManifestPackageJSON
	default:
		return ""
	}
}

// ParseManifest parses manifest content according to kind.
func ParseManifest(kind ManifestKind, content string, fullLock bool) []Dependency {
	switch kind {
	case ManifestRequirementsTxt:
		return parseRequirementsTxt(content)
	case ManifestPyProjectToml:
		return parsePyProjectToml(content)
	case ManifestPackageJSON:
		return parsePackageJSON(content)
	case ManifestPackageLock:
		if fullLock {
			return parseFullPackageLock(content)
		}
		return parsePackageLockJSON(content)
	default:
		return nil
	}
}
