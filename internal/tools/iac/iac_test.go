package iac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/finding"
)

const privilegedPodNoLimits = `apiVersion: v1
kind: Pod
metadata:
  name: demo
spec:
  containers:
    - name: app
      image: demo:1.0
      securityContext:
        privileged: true
`

// TestScenario4_K8sPrivilegedAndMissingLimits verifies spec §8 scenario 4
// exactly.
func TestScenario4_K8sPrivilegedAndMissingLimits(t *testing.T) {
	tool := New(nil)
	args := map[string]any{
		"files": []any{
			map[string]any{"path": "pod.yaml", "content": privilegedPodNoLimits},
		},
	}
	result, err := tool.Core(&contract.ExecContext{}, args)
	require.NoError(t, err)

	findings := result["findings"].([]finding.Finding)
	var sawPrivileged, sawNoLimits bool
	for _, f := range findings {
		if f.RuleID == "K8S-001" {
			sawPrivileged = true
			assert.Equal(t, finding.Critical, f.Severity)
		}
		if f.RuleID == "K8S-007" {
			sawNoLimits = true
			assert.Equal(t, finding.Medium, f.Severity)
		}
	}
	assert.True(t, sawPrivileged)
	assert.True(t, sawNoLimits)

	assert.False(t, result["passed"].(bool))
	riskLevel := result["risk_level"].(string)
	assert.Contains(t, []string{"high", "critical"}, riskLevel)
	assert.Less(t, result["security_score"].(float64), 0.7)
}

func TestDetectKind_Dockerfile(t *testing.T) {
	kind, ok := DetectKind("Dockerfile", "FROM ubuntu:22.04\nUSER app\n")
	require.True(t, ok)
	assert.Equal(t, Dockerfile, kind)
}

func TestDetectKind_Terraform(t *testing.T) {
	kind, ok := DetectKind("main.tf", `resource "aws_s3_bucket" "b" { acl = "private" }`)
	require.True(t, ok)
	assert.Equal(t, Terraform, kind)
}

func TestDetectKind_Kubernetes(t *testing.T) {
	kind, ok := DetectKind("pod.yaml", privilegedPodNoLimits)
	require.True(t, ok)
	assert.Equal(t, Kubernetes, kind)
}

func TestScanWithRules_DockerfileFlagsMissingUserAndLatestTag(t *testing.T) {
	content := "FROM ubuntu\nRUN apt-get install -y curl\n"
	findings, err := ScanWithRules(Dockerfile, "Dockerfile", content, finding.Baseline)
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, f := range findings {
		ids[f.RuleID] = true
	}
	assert.True(t, ids["DOCK-001"])
	assert.True(t, ids["DOCK-002"])
}

func TestScanWithRules_TerraformFlagsOpenSSHIngress(t *testing.T) {
	content := `
resource "aws_security_group_rule" "ssh" {
  type        = "ingress"
  from_port   = 22
  to_port     = 22
  protocol    = "tcp"
  cidr_blocks = ["0.0.0.0/0"]
}
`
	findings, err := ScanWithRules(Terraform, "main.tf", content, finding.Baseline)
	require.NoError(t, err)
	var sawSSH bool
	for _, f := range findings {
		if f.RuleID == "TF-001" {
			sawSSH = true
		}
	}
	assert.True(t, sawSSH)
}

func TestSecurityScore_NoFindingsIsOne(t *testing.T) {
	assert.Equal(t, 1.0, SecurityScore(nil))
}

func TestSecurityScore_FloorsAtZero(t *testing.T) {
	findings := make([]finding.Finding, 0, 6)
	for i := 0; i < 6; i++ {
		findings = append(findings, finding.Finding{Severity: finding.Critical})
	}
	assert.Equal(t, 0.0, SecurityScore(findings))
}

func TestRiskLevel_Tiers(t *testing.T) {
	assert.Equal(t, "low", RiskLevel(nil))
	assert.Equal(t, "medium", RiskLevel([]finding.Finding{{Severity: finding.High}}))
	assert.Equal(t, "high", RiskLevel([]finding.Finding{{Severity: finding.High}, {Severity: finding.High}}))
	assert.Equal(t, "critical", RiskLevel([]finding.Finding{{Severity: finding.Critical}}))
}

func TestToSARIF_DedupsRuleDefinitions(t *testing.T) {
	findings := []finding.Finding{
		{RuleID: "K8S-001", Severity: finding.Critical, File: "a.yaml", Line: 1},
		{RuleID: "K8S-001", Severity: finding.Critical, File: "b.yaml", Line: 2},
	}
	log := ToSARIF(findings)
	require.Len(t, log.Runs, 1)
	assert.Len(t, log.Runs[0].Tool.Driver.Rules, 1)
	assert.Len(t, log.Runs[0].Results, 2)
}

func TestApplyCustomPolicies_BarePatternMatches(t *testing.T) {
	files := []FileInput{{Path: "a.tf", Content: "totally_custom_marker"}}
	findings := applyCustomPolicies([]any{
		map[string]any{"pattern": "totally_custom_marker", "severity": "high"},
	}, files)
	require.Len(t, findings, 1)
	assert.Equal(t, finding.High, findings[0].Severity)
}

func TestSuggestRemediations_OnlyForCriticalOrHighFiles(t *testing.T) {
	files := []FileInput{{Path: "pod.yaml", Content: privilegedPodNoLimits}}
	perFile := map[string][]finding.Finding{
		"pod.yaml": {
			{Severity: finding.Critical, Remediation: "fix it"},
		},
	}
	actions := suggestRemediations(files, perFile, 0.4)
	require.Len(t, actions, 1)
	assert.Equal(t, "code_refactoring", actions[0].Action)
	assert.Equal(t, "yaml", actions[0].Language)
}
