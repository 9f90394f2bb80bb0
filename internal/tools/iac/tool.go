package iac

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/finding"
)

// maxConcurrentFileScans bounds how many files a single scan call rule-
// scans at once, so a large file set still fans out rather than running
// strictly serially.
const maxConcurrentFileScans = 8

// FileInput is one {path, content} pair to scan.
type FileInput struct {
	Path    string
	Content string
}

// CustomPolicy is either a bare regex with a severity, or a full rule
// object in the internal shape (spec §4.8 "Custom policies accept either a
// regex pattern with a severity, or a YAML object following the internal
// rule shape").
type CustomPolicy struct {
	Pattern  string
	Severity finding.Severity
	Rule     *finding.Rule
}

// Refactor is the hook used for auto-chain remediation: in-process
// invocation of the code_refactoring tool's Core. Left nil disables
// auto-chain without affecting the rest of the scan.
type Refactor func(ec *contract.ExecContext, args map[string]any) (map[string]any, error)

// Tool implements contract.Tool for the IaC guardrails scanner.
type Tool struct {
	refactor Refactor
}

// New builds the iac_guardrails_scan Tool. refactor may be nil.
func New(refactor Refactor) *Tool {
	return &Tool{refactor: refactor}
}

func (t *Tool) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Name:         "iac_guardrails_scan",
		Description:  "Scans Kubernetes/Terraform/Dockerfile infrastructure-as-code for security and compliance issues",
		Category:     "security",
		RequiredArgs: []string{"files"},
		OptionalArgs: []string{"profile", "custom_policies", "deep_analysis", "sarif", "auto_remediate", "remediate_threshold"},
		Suspendable:  true,
	}
}

func (t *Tool) RequestSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["files"],
		"properties": {
			"files": {"type": "array"},
			"profile": {"type": "string", "enum": ["baseline", "strict"]},
			"deep_analysis": {"type": "boolean"},
			"sarif": {"type": "boolean"},
			"auto_remediate": {"type": "boolean"},
			"remediate_threshold": {"type": "number"}
		}
	}`)
}

func (t *Tool) ResponseSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["findings", "passed", "security_score", "compliance_score", "risk_level"]
	}`)
}

func (t *Tool) Core(ec *contract.ExecContext, args map[string]any) (map[string]any, error) {
	files, err := decodeFileInputs(args["files"])
	if err != nil {
		return nil, contract.NewValidationError(err.Error())
	}
	if len(files) == 0 {
		return nil, contract.NewValidationError("files must be a non-empty array")
	}

	profile := finding.Profile(stringArg(args, "profile"))
	if profile == "" {
		profile = finding.Baseline
	}

	// Each file's regex + deep scan is independent of every other file's;
	// fan them out bounded rather than walking the set serially, then
	// reassemble in original order so results stay deterministic.
	perFileResults := make([][]finding.Finding, len(files))
	g, gctx := errgroup.WithContext(context.Background())
	g.SetLimit(maxConcurrentFileScans)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			kind, ok := DetectKind(f.Path, f.Content)
			if !ok {
				return nil
			}
			fileFindings, err := ScanWithRules(kind, f.Path, f.Content, profile)
			if err != nil {
				return fmt.Errorf("rule scan failed for %s: %w", f.Path, err)
			}
			if kind == Kubernetes {
				fileFindings = append(fileFindings, ScanKubernetesDeep(f.Path, f.Content)...)
			}
			perFileResults[i] = fileFindings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, contract.NewExecutionError(err.Error(), err)
	}

	var findings []finding.Finding
	perFile := map[string][]finding.Finding{}
	for i, f := range files {
		findings = append(findings, perFileResults[i]...)
		perFile[f.Path] = append(perFile[f.Path], perFileResults[i]...)
	}

	findings = append(findings, applyCustomPolicies(args["custom_policies"], files)...)

	heuristicSecurity := SecurityScore(findings)
	compliance := ComplianceScore(findings)
	riskLevel := RiskLevel(findings)
	insights := []string{}

	if boolArg(args, "deep_analysis") && ec != nil && ec.LLM != nil {
		blended, blendedInsights, ok := deepAnalysisBlend(context.Background(), ec.LLM, files, findings, heuristicSecurity, compliance)
		if ok {
			heuristicSecurity = blended.security
			compliance = blended.compliance
			if blended.riskLevel != "" {
				riskLevel = blended.riskLevel
			}
			insights = blendedInsights
		}
	}

	passed := finding.Passed(findings)
	suggestions := suggestRemediations(files, perFile, heuristicSecurity)

	result := map[string]any{
		"findings":          findings,
		"counts":            finding.CountsBySeverity(findings),
		"passed":            passed,
		"security_score":    heuristicSecurity,
		"compliance_score":  compliance,
		"risk_level":        riskLevel,
		"insights":          insights,
		"suggested_actions": suggestions,
	}

	if boolArg(args, "sarif") {
		result["sarif"] = ToSARIF(findings)
	}

	if boolArg(args, "auto_remediate") && t.refactor != nil {
		threshold := floatArg(args, "remediate_threshold", 0.7)
		if heuristicSecurity < threshold && len(suggestions) > 0 {
			result["auto_remediation"] = t.runAutoRemediation(ec, suggestions[0])
		}
	}

	return result, nil
}

func decodeFileInputs(raw any) ([]FileInput, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("files must be an array of {path, content}")
	}
	out := make([]FileInput, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("each file entry must be an object")
		}
		path, _ := m["path"].(string)
		content, _ := m["content"].(string)
		if path == "" {
			return nil, fmt.Errorf("each file entry requires a non-empty path")
		}
		out = append(out, FileInput{Path: path, Content: content})
	}
	return out, nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func floatArg(args map[string]any, key string, def float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}
