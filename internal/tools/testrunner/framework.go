package testrunner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Framework is one supported test runner.
type Framework string

const (
	Pytest   Framework = "pytest"
	Unittest Framework = "unittest"
	Vitest   Framework = "vitest"
	Jest     Framework = "jest"
	Mocha    Framework = "mocha"
)

var frameworksByLanguage = map[string][]Framework{
	"python":     {Pytest, Unittest},
	"typescript": {Vitest, Jest, Mocha},
	"javascript": {Vitest, Jest, Mocha},
}

// Compatible reports whether framework is usable for language (spec §4.10
// "a language<->framework compatibility check rejects mismatches").
func Compatible(language string, framework Framework) bool {
	for _, f := range frameworksByLanguage[language] {
		if f == framework {
			return true
		}
	}
	return false
}

// DetectFramework auto-selects a framework for language: pytest for Python
// whether or not pyproject.toml mentions it, and vitest > jest > mocha by
// package.json dependency for JS, defaulting to jest (spec §4.10).
func DetectFramework(language, dir string) Framework {
	switch language {
	case "python":
		if mentionsPytest(dir) {
			return Pytest
		}
		return Pytest
	case "typescript", "javascript":
		deps := packageJSONDeps(dir)
		switch {
		case deps["vitest"]:
			return Vitest
		case deps["jest"]:
			return Jest
		case deps["mocha"]:
			return Mocha
		default:
			return Jest
		}
	default:
		return Pytest
	}
}

func mentionsPytest(dir string) bool {
	content, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		return false
	}
	return strings.Contains(string(content), "pytest")
}

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func packageJSONDeps(dir string) map[string]bool {
	content, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil
	}
	var pkg packageJSON
	if err := json.Unmarshal(content, &pkg); err != nil {
		return nil
	}
	out := map[string]bool{}
	for name := range pkg.Dependencies {
		out[name] = true
	}
	for name := range pkg.DevDependencies {
		out[name] = true
	}
	return out
}
