package consistency

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/collegue/specmcp/internal/finding"
)

var lineCommentPrefixes = []string{"//", "#"}

// normalizeLine strips a trailing single-line comment and surrounding
// whitespace so formatting differences don't defeat duplicate detection.
func normalizeLine(line string) string {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range lineCommentPrefixes {
		if idx := strings.Index(trimmed, prefix); idx >= 0 {
			trimmed = strings.TrimSpace(trimmed[:idx])
		}
	}
	return trimmed
}

type window struct {
	path      string
	startLine int
	hash      string
}

func hashWindow(lines []string) string {
	joined := strings.Join(lines, "\n")
	sum := md5.Sum([]byte(joined))
	return hex.EncodeToString(sum[:])
}

// CheckDuplication slides a minLines-line window (blank/comment-normalized)
// over every file and reports pairs across distinct paths sharing a hash
// (spec §4.7). Windows within the same file are not reported.
func CheckDuplication(files []File, minLines int) []finding.Finding {
	if minLines <= 0 {
		minLines = 6
	}

	var windows []window
	for _, f := range files {
		rawLines := strings.Split(f.Content, "\n")
		norm := make([]string, len(rawLines))
		for i, l := range rawLines {
			norm[i] = normalizeLine(l)
		}
		for start := 0; start+minLines <= len(norm); start++ {
			block := norm[start : start+minLines]
			if allBlank(block) {
				continue
			}
			windows = append(windows, window{
				path:      f.Path,
				startLine: start + 1,
				hash:      hashWindow(block),
			})
		}
	}

	byHash := map[string][]window{}
	for _, w := range windows {
		byHash[w.hash] = append(byHash[w.hash], w)
	}

	seenPairs := map[string]bool{}
	var out []finding.Finding
	for _, group := range byHash {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.path == b.path {
					continue
				}
				key := pairKey(a, b)
				if seenPairs[key] {
					continue
				}
				seenPairs[key] = true
				out = append(out, finding.Finding{
					RuleID:   "duplication",
					Severity: finding.Low,
					File:     a.path,
					Line:     a.startLine,
					Title:    "Duplicated code block",
					Message:  a.path + ":" + strconv.Itoa(a.startLine) + " duplicates " + b.path + ":" + strconv.Itoa(b.startLine) + " (" + strconv.Itoa(minLines) + " lines)",
					Type:     "duplication",
					Engine:   "consistency_checker",
				})
			}
		}
	}
	return out
}

func allBlank(lines []string) bool {
	for _, l := range lines {
		if l != "" {
			return false
		}
	}
	return true
}

func pairKey(a, b window) string {
	if a.path > b.path {
		a, b = b, a
	}
	return a.path + ":" + strconv.Itoa(a.startLine) + "|" + b.path + ":" + strconv.Itoa(b.startLine)
}
