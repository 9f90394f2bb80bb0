package dependency

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/collegue/specmcp/internal/finding"
	"github.com/collegue/specmcp/internal/httpclient"
)

// maxConcurrentDetailFetches bounds how many OSV vulnerability-detail
// requests run at once per ScanBatch call, so a manifest with hundreds of
// flagged packages doesn't open hundreds of simultaneous connections.
const maxConcurrentDetailFetches = 8

// osvQuery is one element of an OSV batch request (spec §6).
type osvQuery struct {
	Package struct {
		Name      string `json:"name"`
		Ecosystem string `json:"ecosystem"`
	} `json:"package"`
	Version string `json:"version,omitempty"`
}

type osvBatchRequest struct {
	Queries []osvQuery `json:"queries"`
}

type osvVulnRef struct {
	ID string `json:"id"`
}

type osvBatchResponseEntry struct {
	Vulns []osvVulnRef `json:"vulns"`
}

type osvBatchResponse struct {
	Results []osvBatchResponseEntry `json:"results"`
}

type osvAffectedRange struct {
	Events []struct {
		Fixed string `json:"fixed"`
	} `json:"events"`
}

type osvAffected struct {
	Ranges []osvAffectedRange `json:"ranges"`
}

type osvDetail struct {
	ID               string   `json:"id"`
	Aliases          []string `json:"aliases"`
	Summary          string   `json:"summary"`
	DatabaseSpecific struct {
		Severity string `json:"severity"`
	} `json:"database_specific"`
	EcosystemSpecific struct {
		Severity string `json:"severity"`
	} `json:"ecosystem_specific"`
	Severity []struct {
		Type  string `json:"type"`
		Score string `json:"score"`
	} `json:"severity"`
	Affected []osvAffected `json:"affected"`
}

// Client wraps the OSV batch-query + detail-fetch flow, plus registry
// existence probes (spec §4.5, §6).
type Client struct {
	http         *httpclient.Client
	osvEndpoint  string
	pypiEndpoint string
	npmEndpoint  string
}

// NewClient builds a dependency-guard Client.
func NewClient(http *httpclient.Client, osvEndpoint, pypiEndpoint, npmEndpoint string) *Client {
	return &Client{http: http, osvEndpoint: osvEndpoint, pypiEndpoint: pypiEndpoint, npmEndpoint: npmEndpoint}
}

// CheckExistence probes the ecosystem's registry for the package. A
// confirmed 404 reports exists=false; any other outcome (including a
// transient error) reports exists=true so callers never emit a false
// not_found from an external-service hiccup (spec §7 "downgraded
// silently").
func (c *Client) CheckExistence(ctx context.Context, d Dependency) (exists bool) {
	var url string
	switch d.Ecosystem {
	case EcosystemPyPI:
		url = c.pypiEndpoint + "/pypi/" + d.Name + "/json"
	case EcosystemNpm:
		url = c.npmEndpoint + "/" + d.Name
	default:
		return true
	}
	found, err := c.http.GetJSON(ctx, url, nil)
	if err != nil {
		return true
	}
	return found
}

// VulnResult is one OSV finding ready for severity classification.
type VulnResult struct {
	Dependency Dependency
	ID         string
	CVE        string
	Severity   finding.Severity
	FixedIn    []string
	Summary    string
}

// ScanBatch queries OSV for every dependency in a single batch request,
// then fetches each returned vulnerability's detail record once (spec
// §4.5, §6).
func (c *Client) ScanBatch(ctx context.Context, deps []Dependency) ([]VulnResult, error) {
	if len(deps) == 0 {
		return nil, nil
	}
	req := osvBatchRequest{}
	for _, d := range deps {
		q := osvQuery{Version: d.Version}
		q.Package.Name = d.Name
		q.Package.Ecosystem = string(d.Ecosystem)
		req.Queries = append(req.Queries, q)
	}

	var resp osvBatchResponse
	if err := c.http.PostJSON(ctx, c.osvEndpoint+"/v1/querybatch", req, &resp); err != nil {
		return nil, err
	}

	type job struct {
		dep Dependency
		id  string
	}
	var jobs []job
	seen := map[string]bool{}
	for i, entry := range resp.Results {
		if i >= len(deps) {
			break
		}
		dep := deps[i]
		for _, vref := range entry.Vulns {
			key := dep.Name + "@" + dep.Version + ":" + vref.ID
			if seen[key] {
				continue
			}
			seen[key] = true
			jobs = append(jobs, job{dep: dep, id: vref.ID})
		}
	}

	// Each flagged vulnerability needs its own detail fetch; running them
	// concurrently (bounded) keeps a manifest with many findings from
	// paying for every OSV round trip serially.
	var mu sync.Mutex
	var results []VulnResult
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDetailFetches)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			var detail osvDetail
			found, err := c.http.GetJSON(gctx, c.osvEndpoint+"/v1/vulns/"+j.id, &detail)
			if err != nil || !found {
				return nil
			}
			vr := VulnResult{
				Dependency: j.dep,
				ID:         preferCVE(detail),
				CVE:        preferCVE(detail),
				Severity:   classifySeverity(detail),
				FixedIn:    fixedVersions(detail),
				Summary:    detail.Summary,
			}
			mu.Lock()
			results = append(results, vr)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // detail-fetch failures are per-item skips, never a batch failure

	return results, nil
}

// preferCVE returns a CVE alias if one is present, else the native id.
func preferCVE(d osvDetail) string {
	for _, alias := range d.Aliases {
		if strings.HasPrefix(alias, "CVE-") {
			return alias
		}
	}
	return d.ID
}

// classifySeverity prefers database_specific.severity, then
// ecosystem_specific.severity, then a bucketed CVSS score, defaulting to
// medium (spec §4.5).
func classifySeverity(d osvDetail) finding.Severity {
	if sev := normalizeSeverityWord(d.DatabaseSpecific.Severity); sev != "" {
		return sev
	}
	if sev := normalizeSeverityWord(d.EcosystemSpecific.Severity); sev != "" {
		return sev
	}
	for _, s := range d.Severity {
		if s.Type == "CVSS_V3" || s.Type == "CVSS_V2" {
			if score, err := strconv.ParseFloat(s.Score, 64); err == nil {
				return bucketCVSS(score)
			}
		}
	}
	return finding.Medium
}

func normalizeSeverityWord(s string) finding.Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL":
		return finding.Critical
	case "HIGH":
		return finding.High
	case "MODERATE", "MEDIUM":
		return finding.Medium
	case "LOW":
		return finding.Low
	default:
		return ""
	}
}

func bucketCVSS(score float64) finding.Severity {
	switch {
	case score >= 9:
		return finding.Critical
	case score >= 7:
		return finding.High
	case score >= 4:
		return finding.Medium
	default:
		return finding.Low
	}
}

func fixedVersions(d osvDetail) []string {
	var out []string
	seen := map[string]bool{}
	for _, aff := range d.Affected {
		for _, r := range aff.Ranges {
			for _, ev := range r.Events {
				if ev.Fixed != "" && !seen[ev.Fixed] {
					seen[ev.Fixed] = true
					out = append(out, ev.Fixed)
				}
			}
		}
	}
	return out
}
