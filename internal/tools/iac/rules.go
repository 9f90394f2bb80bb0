// Package iac implements the IaC Guardrails Scanner of spec §4.8:
// regex rule sets for Kubernetes/Terraform/Dockerfile plus deep semantic
// scanners, scoring, optional LLM-blended deep analysis, and SARIF output.
package iac

import (
	"embed"
	"fmt"
	"regexp"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"github.com/collegue/specmcp/internal/finding"
)

//go:embed rules/*.yaml
var embeddedRules embed.FS

// RuleSet is the {baseline, strict} shape every YAML rule file follows.
type RuleSet struct {
	Baseline []finding.Rule `yaml:"baseline"`
	Strict   []finding.Rule `yaml:"strict"`
}

// Kind is a recognized IaC artifact type.
type Kind string

const (
	Kubernetes Kind = "kubernetes"
	Terraform  Kind = "terraform"
	Dockerfile Kind = "dockerfile"
)

var ruleFileByKind = map[Kind]string{
	Kubernetes: "rules/k8s.yaml",
	Terraform:  "rules/terraform.yaml",
	Dockerfile: "rules/dockerfile.yaml",
}

var (
	ruleSetsOnce sync.Once
	ruleSets     map[Kind]RuleSet
	ruleSetsErr  error

	regexCache *lru.Cache[string, *regexp.Regexp]
)

func init() {
	c, err := lru.New[string, *regexp.Regexp](256)
	if err != nil {
		panic(fmt.Sprintf("iac: failed to build regex cache: %v", err))
	}
	regexCache = c
}

func loadRuleSets() (map[Kind]RuleSet, error) {
	ruleSetsOnce.Do(func() {
		ruleSets = make(map[Kind]RuleSet, len(ruleFileByKind))
		for kind, path := range ruleFileByKind {
			raw, err := embeddedRules.ReadFile(path)
			if err != nil {
				ruleSetsErr = fmt.Errorf("iac: reading %s: %w", path, err)
				return
			}
			var rs RuleSet
			if err := yaml.Unmarshal(raw, &rs); err != nil {
				ruleSetsErr = fmt.Errorf("iac: parsing %s: %w", path, err)
				return
			}
			ruleSets[kind] = rs
		}
	})
	return ruleSets, ruleSetsErr
}

// rulesForProfile returns baseline rules, plus strict rules too when profile
// is "strict".
func rulesForProfile(kind Kind, profile finding.Profile) ([]finding.Rule, error) {
	sets, err := loadRuleSets()
	if err != nil {
		return nil, err
	}
	rs, ok := sets[kind]
	if !ok {
		return nil, fmt.Errorf("iac: no rule set registered for kind %q", kind)
	}
	out := append([]finding.Rule{}, rs.Baseline...)
	if profile == finding.Strict {
		out = append(out, rs.Strict...)
	}
	return out, nil
}

// compileCached compiles pattern once per process and reuses it across
// every scan call (spec §5 "rule caches... memoized for the process
// lifetime").
func compileCached(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("iac: invalid rule pattern %q: %w", pattern, err)
	}
	regexCache.Add(pattern, re)
	return re, nil
}
