package secrets

import (
	"encoding/json"
	"fmt"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/finding"
)

// Tool implements contract.Tool for the secret scanner.
type Tool struct{}

// New builds the secret_scan Tool.
func New() *Tool { return &Tool{} }

func (t *Tool) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Name:         "secret_scan",
		Description:  "Scans content, a file, or a directory for hardcoded secrets and credentials",
		Category:     "security",
		RequiredArgs: []string{},
		OptionalArgs: []string{"content", "path", "directory", "includes", "excludes", "severity_threshold"},
		Suspendable:  false,
	}
}

func (t *Tool) RequestSchema() json.RawMessage {
	return json.RawMessage(`{"type": "object"}`)
}

func (t *Tool) ResponseSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["findings", "clean", "summary"]
	}`)
}

func (t *Tool) Core(ec *contract.ExecContext, args map[string]any) (map[string]any, error) {
	threshold := finding.Severity(stringArg(args, "severity_threshold"))

	var findings []finding.Finding
	filesScanned := 0
	var err error

	switch {
	case stringArg(args, "content") != "":
		findings = ScanContent(stringArg(args, "content"), threshold)
		filesScanned = 1
	case stringArg(args, "path") != "":
		findings, filesScanned, err = ScanFile(stringArg(args, "path"), threshold)
	case stringArg(args, "directory") != "":
		opts := ScanOptions{
			Includes:          stringSliceArg(args, "includes"),
			Excludes:          stringSliceArg(args, "excludes"),
			SeverityThreshold: threshold,
		}
		findings, filesScanned, err = ScanDirectory(stringArg(args, "directory"), opts)
	default:
		return nil, contract.NewValidationError("one of content, path, or directory is required")
	}
	if err != nil {
		return nil, contract.NewExecutionError(fmt.Sprintf("scan failed: %v", err), err)
	}

	counts := finding.CountsBySeverity(findings)
	clean := len(findings) == 0

	return map[string]any{
		"findings":      findings,
		"counts":        counts,
		"files_scanned": filesScanned,
		"clean":         clean,
		"summary":       summarize(findings, filesScanned, clean),
	}, nil
}

func summarize(findings []finding.Finding, filesScanned int, clean bool) string {
	if clean {
		return fmt.Sprintf("secret scan clean across %d file(s)", filesScanned)
	}
	counts := finding.CountsBySeverity(findings)
	return fmt.Sprintf("secret scan found %d finding(s) across %d file(s): %d critical, %d high",
		len(findings), filesScanned, counts[finding.Critical], counts[finding.High])
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
