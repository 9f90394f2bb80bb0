package dependency

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/finding"
)

// maxConcurrentExistenceChecks bounds how many registry-existence probes
// run at once per dependency_guard call.
const maxConcurrentExistenceChecks = 8

// Request is the dependency_guard request shape.
type Request struct {
	Content            string   `json:"content"`
	ManifestFilename    string   `json:"manifest_filename,omitempty"`
	Language           string   `json:"language,omitempty"`
	FullLock           bool     `json:"full_lock,omitempty"`
	Blocklist          []string `json:"blocklist,omitempty"`
	Allowlist          []string `json:"allowlist,omitempty"`
	CheckExistence     bool     `json:"check_existence,omitempty"`
	CheckVulnerabilities bool   `json:"check_vulnerabilities,omitempty"`
}

// Response is the dependency_guard response shape.
type Response struct {
	Findings []finding.Finding         `json:"findings"`
	Counts   map[finding.Severity]int `json:"counts"`
	Valid    bool                      `json:"valid"`
	Summary  string                    `json:"summary"`
}

// Tool implements contract.Tool for the registry & vulnerability guard.
type Tool struct {
	osv   *Client
	lists *ListStore
}

// New builds the dependency_guard Tool. osv may be nil when no HTTP
// client is configured — existence/vulnerability checks are then skipped
// even if requested, per the "external-service error downgraded silently"
// policy of spec §7. lists may also be nil, in which case only the
// request's own blocklist/allowlist args apply.
func New(osv *Client, lists *ListStore) *Tool {
	return &Tool{osv: osv, lists: lists}
}

func (t *Tool) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Name:         "dependency_guard",
		Description:  "Checks a dependency manifest for blocked, malicious, deprecated, missing, and vulnerable packages",
		Category:     "dependency",
		RequiredArgs: []string{"content"},
		OptionalArgs: []string{"manifest_filename", "language", "full_lock", "blocklist", "allowlist", "check_existence", "check_vulnerabilities"},
		Suspendable:  true, // may perform HTTP calls (registry existence, OSV)
	}
}

func (t *Tool) RequestSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["content"],
		"properties": {"content": {"type": "string"}}
	}`)
}

func (t *Tool) ResponseSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["findings", "valid", "summary"]
	}`)
}

func (t *Tool) Core(ec *contract.ExecContext, args map[string]any) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req := decodeRequest(args)

	kind := DetectManifestKind(req.ManifestFilename)
	if kind == "" {
		kind = guessKindFromLanguage(req.Language)
	}
	deps := ParseManifest(kind, req.Content, req.FullLock)

	lists := t.mergedLists(req)
	var findings []finding.Finding
	for _, d := range deps {
		findings = append(findings, checkLists(d, lists)...)
	}

	if req.CheckExistence && t.osv != nil {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxConcurrentExistenceChecks)
		for _, d := range deps {
			d := d
			g.Go(func() error {
				if t.osv.CheckExistence(gctx, d) {
					return nil
				}
				mu.Lock()
				findings = append(findings, finding.Finding{
					RuleID:   "not_found",
					Severity: finding.Critical,
					Title:    "Package not found in registry",
					Message:  fmt.Sprintf("%s was not found in the %s registry", d.Name, d.Ecosystem),
					Type:     "not_found",
					Engine:   "dependency_guard",
				})
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	if req.CheckVulnerabilities && t.osv != nil {
		vulns, err := t.osv.ScanBatch(ctx, deps)
		if err == nil {
			for _, v := range vulns {
				findings = append(findings, finding.Finding{
					RuleID:   "vulnerable",
					Severity: v.Severity,
					Title:    "Known vulnerability",
					Message:  fmt.Sprintf("%s@%s: %s (%s)", v.Dependency.Name, v.Dependency.Version, v.Summary, v.ID),
					Type:     "vulnerable",
					CVEIDs:   []string{v.CVE},
					Engine:   "dependency_guard",
				})
			}
		}
		// external-service errors are downgraded silently (spec §7): the
		// heuristic findings above are still returned.
	}

	findings = dedupeFindings(findings)
	counts := finding.CountsBySeverity(findings)
	valid := counts[finding.Critical] == 0 && counts[finding.High] == 0

	resp := Response{
		Findings: findings,
		Counts:   counts,
		Valid:    valid,
		Summary:  summarize(counts, valid),
	}
	return toMap(resp), nil
}

// mergedLists combines the store's config-file-backed lists (the org-wide
// baseline, hot-reloaded from disk) with the request's own blocklist/
// allowlist args (appended to that baseline for this call only).
func (t *Tool) mergedLists(req Request) Lists {
	if t.lists == nil {
		return Lists{Blocklist: req.Blocklist, Allowlist: req.Allowlist}
	}
	base := t.lists.Lists()
	return Lists{
		Blocklist: append(append([]string{}, base.Blocklist...), req.Blocklist...),
		Allowlist: append(append([]string{}, base.Allowlist...), req.Allowlist...),
	}
}

func guessKindFromLanguage(language string) ManifestKind {
	switch language {
	case "python":
		return ManifestRequirementsTxt
	case "javascript", "typescript":
		return ManifestPackageJSON
	default:
		return ""
	}
}

func dedupeFindings(findings []finding.Finding) []finding.Finding {
	seen := map[string]bool{}
	var out []finding.Finding
	for _, f := range findings {
		key := f.RuleID + "|" + f.Type + "|" + f.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RuleID < out[j].RuleID })
	return out
}

func summarize(counts map[finding.Severity]int, valid bool) string {
	status := "passed"
	if !valid {
		status = "failed"
	}
	return fmt.Sprintf("dependency guard %s: %d critical, %d high, %d medium, %d low",
		status, counts[finding.Critical], counts[finding.High], counts[finding.Medium], counts[finding.Low])
}

func decodeRequest(args map[string]any) Request {
	req := Request{}
	if v, ok := args["content"].(string); ok {
		req.Content = v
	}
	if v, ok := args["manifest_filename"].(string); ok {
		req.ManifestFilename = v
	}
	if v, ok := args["language"].(string); ok {
		req.Language = v
	}
	if v, ok := args["full_lock"].(bool); ok {
		req.FullLock = v
	}
	if v, ok := args["check_existence"].(bool); ok {
		req.CheckExistence = v
	}
	if v, ok := args["check_vulnerabilities"].(bool); ok {
		req.CheckVulnerabilities = v
	}
	req.Blocklist = toStringSlice(args["blocklist"])
	req.Allowlist = toStringSlice(args["allowlist"])
	return req
}

func toStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		if s, ok := v.([]string); ok {
			return s
		}
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

func toMap(resp Response) map[string]any {
	return map[string]any{
		"findings": resp.Findings,
		"counts":   resp.Counts,
		"valid":    resp.Valid,
		"summary":  resp.Summary,
	}
}
