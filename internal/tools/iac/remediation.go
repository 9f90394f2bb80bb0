package iac

import (
	"fmt"
	"sort"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/finding"
)

const maxRemediationContentBytes = 5 * 1024

// SuggestedAction is the spec §4.8 "proposed code_refactoring action" for
// a file carrying at least one critical/high finding.
type SuggestedAction struct {
	Action       string  `json:"action"`
	File         string  `json:"file"`
	Content      string  `json:"content"`
	Language     string  `json:"language"`
	Instructions string  `json:"instructions"`
	Score        float64 `json:"score"`
}

// suggestRemediations proposes one code_refactoring action per file with
// at least one critical/high finding, ranked by score descending. content
// carries each file's content (truncated to 5 KB per spec §4.8).
func suggestRemediations(files []FileInput, perFile map[string][]finding.Finding, securityScore float64) []SuggestedAction {
	content := map[string]string{}
	for _, f := range files {
		content[f.Path] = f.Content
	}

	var out []SuggestedAction
	for path, findings := range perFile {
		if !hasCriticalOrHigh(findings) {
			continue
		}
		top := topRemediations(findings, 3)
		fileContent := content[path]
		if len(fileContent) > maxRemediationContentBytes {
			fileContent = fileContent[:maxRemediationContentBytes]
		}
		out = append(out, SuggestedAction{
			Action:       "code_refactoring",
			File:         path,
			Content:      fileContent,
			Language:     languageFromKind(path, content[path]),
			Instructions: joinInstructions(top),
			Score:        1 - securityScore,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func hasCriticalOrHigh(findings []finding.Finding) bool {
	for _, f := range findings {
		if f.Severity == finding.Critical || f.Severity == finding.High {
			return true
		}
	}
	return false
}

func topRemediations(findings []finding.Finding, n int) []string {
	sorted := append([]finding.Finding{}, findings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return severityWeight[sorted[i].Severity] > severityWeight[sorted[j].Severity]
	})
	var out []string
	for i, f := range sorted {
		if i >= n {
			break
		}
		if f.Remediation != "" {
			out = append(out, f.Remediation)
		}
	}
	return out
}

func joinInstructions(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += "; "
		}
		out += s
	}
	return out
}

func languageFromKind(path, content string) string {
	kind, ok := DetectKind(path, content)
	if !ok {
		return "text"
	}
	switch kind {
	case Kubernetes:
		return "yaml"
	case Terraform:
		return "hcl"
	case Dockerfile:
		return "dockerfile"
	default:
		return "text"
	}
}

// runAutoRemediation executes the refactoring tool in-process for the
// highest-scored suggested action and reports a compact summary (spec
// §4.8 "record a compact result describing how many issues were targeted
// and a preview of the before/after").
func (t *Tool) runAutoRemediation(ec *contract.ExecContext, action SuggestedAction) map[string]any {
	content := action.Content
	if len(content) > maxRemediationContentBytes {
		content = content[:maxRemediationContentBytes]
	}
	result, err := t.refactor(ec, map[string]any{
		"code":         content,
		"language":     action.Language,
		"instructions": action.Instructions,
	})
	if err != nil {
		return map[string]any{
			"applied": false,
			"error":   err.Error(),
		}
	}
	refactored, _ := result["refactored_code"].(string)
	return map[string]any{
		"applied":     true,
		"file":        action.File,
		"before":      preview(content),
		"after":       preview(refactored),
		"instructions": action.Instructions,
	}
}

func preview(s string) string {
	const maxPreview = 400
	if len(s) <= maxPreview {
		return s
	}
	return s[:maxPreview] + fmt.Sprintf("... (%d more bytes)", len(s)-maxPreview)
}
