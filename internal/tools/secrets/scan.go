package secrets

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/collegue/specmcp/internal/finding"
)

// defaultExcludeDirs are always skipped during a directory walk.
var defaultExcludeDirs = []string{"node_modules", ".git", "__pycache__", "dist", "build", ".next", "target", "vendor"}

// defaultExtensions governs which files are scanned in directory mode.
var defaultExtensions = []string{".py", ".js", ".ts", ".jsx", ".tsx", ".go", ".java", ".rb", ".php", ".yaml", ".yml", ".json", ".env", ".toml", ".sh", ".md"}

const maxFindings = 100
const maxLineLen = 200

// maskSecret shows the first/last 4 characters and stars the rest (spec
// §4.6 and §9: "whether that is acceptable for the tightest compliance
// posture is a policy decision, not a reimplementation choice" — the
// behavior itself is not negotiable here).
func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}

func truncateLine(line string) string {
	if len(line) <= maxLineLen {
		return line
	}
	return line[:maxLineLen] + "..."
}

// scanText applies every rule to content, returning raw findings (before
// severity-threshold filtering) for a single virtual or real file path.
func scanText(path, content string) []finding.Finding {
	var out []finding.Finding
	lines := strings.Split(content, "\n")
	for lineIdx, line := range lines {
		for _, r := range rules {
			matches := r.Pattern.FindAllStringSubmatchIndex(line, -1)
			for _, m := range matches {
				secret := line[m[0]:m[1]]
				col := m[0] + 1
				if len(m) >= 4 && m[2] >= 0 {
					secret = line[m[2]:m[3]]
					col = m[2] + 1
				}
				out = append(out, finding.Finding{
					RuleID:      r.ID,
					Severity:    r.Severity,
					File:        path,
					Line:        lineIdx + 1,
					Column:      col,
					Title:       r.Title,
					Message:     truncateLine(line) + " — " + maskSecret(secret),
					Remediation: r.Remediation,
					Type:        r.ID,
					Engine:      "secret_scanner",
				})
			}
		}
	}
	return out
}

// ScanOptions controls a directory-mode scan.
type ScanOptions struct {
	Includes          []string
	Excludes          []string
	SeverityThreshold finding.Severity
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, filepath.Base(path)); ok {
			return true
		}
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

func isExcludedDir(name string) bool {
	for _, d := range defaultExcludeDirs {
		if name == d {
			return true
		}
	}
	return false
}

func hasAllowedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range defaultExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ScanContent scans a single in-memory buffer as one virtual file.
func ScanContent(content string, threshold finding.Severity) []finding.Finding {
	return filterAndSort(scanText("content", content), threshold)
}

// ScanFile scans one file on disk.
func ScanFile(path string, threshold finding.Severity) ([]finding.Finding, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	return filterAndSort(scanText(path, string(data)), threshold), 1, nil
}

// ScanDirectory walks dir applying default + user excludes/includes and
// the extension whitelist.
func ScanDirectory(dir string, opts ScanOptions) ([]finding.Finding, int, error) {
	var all []finding.Finding
	filesScanned := 0

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if isExcludedDir(info.Name()) {
				return filepath.SkipDir
			}
			if matchesAny(opts.Excludes, path) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchesAny(opts.Excludes, path) {
			return nil
		}
		if len(opts.Includes) > 0 && !matchesAny(opts.Includes, path) {
			return nil
		}
		if len(opts.Includes) == 0 && !hasAllowedExtension(path) {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		filesScanned++
		all = append(all, scanText(path, string(data))...)
		return nil
	})
	if err != nil {
		return nil, filesScanned, err
	}
	return filterAndSort(all, opts.SeverityThreshold), filesScanned, nil
}

func filterAndSort(findings []finding.Finding, threshold finding.Severity) []finding.Finding {
	if threshold == "" {
		threshold = finding.Info
	}
	var out []finding.Finding
	for _, f := range findings {
		if f.Severity.AtLeast(threshold) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].RuleID < out[j].RuleID
	})
	if len(out) > maxFindings {
		out = out[:maxFindings]
	}
	return out
}
