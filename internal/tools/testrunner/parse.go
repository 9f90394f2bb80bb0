package testrunner

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// TestCase is one reported individual test result.
type TestCase struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// Summary is the framework-agnostic parsed outcome (spec §4.10).
type Summary struct {
	Framework Framework  `json:"framework"`
	Total     int        `json:"total"`
	Passed    int        `json:"passed"`
	Failed    int        `json:"failed"`
	Success   bool       `json:"success"`
	Tests     []TestCase `json:"tests,omitempty"`
}

// pytestJSONReport is the subset of pytest-json-report's schema used here.
type pytestJSONReport struct {
	Summary struct {
		Total  int `json:"total"`
		Passed int `json:"passed"`
		Failed int `json:"failed"`
	} `json:"summary"`
	Tests []struct {
		Nodeid  string `json:"nodeid"`
		Outcome string `json:"outcome"`
	} `json:"tests"`
}

var pytestSummaryLineRe = regexp.MustCompile(`(\d+)\s+passed(?:,\s*(\d+)\s+failed)?`)
var pytestFailedOnlyRe = regexp.MustCompile(`(\d+)\s+failed`)

// ParsePytest prefers the JSON report blob if jsonReport is non-empty;
// otherwise falls back to a text summary-line regex over stdout.
func ParsePytest(stdout string, jsonReport []byte) Summary {
	if len(jsonReport) > 0 {
		var report pytestJSONReport
		if err := json.Unmarshal(jsonReport, &report); err == nil {
			s := Summary{
				Framework: Pytest,
				Total:     report.Summary.Total,
				Passed:    report.Summary.Passed,
				Failed:    report.Summary.Failed,
			}
			for _, tc := range report.Tests {
				s.Tests = append(s.Tests, TestCase{Name: tc.Nodeid, Passed: tc.Outcome == "passed"})
			}
			s.Success = s.Failed == 0 && s.Total > 0
			return s
		}
	}

	s := Summary{Framework: Pytest}
	if m := pytestSummaryLineRe.FindStringSubmatch(stdout); m != nil {
		s.Passed = atoi(m[1])
		if m[2] != "" {
			s.Failed = atoi(m[2])
		}
	} else if m := pytestFailedOnlyRe.FindStringSubmatch(stdout); m != nil {
		s.Failed = atoi(m[1])
	}
	s.Total = s.Passed + s.Failed
	s.Success = s.Failed == 0 && s.Total > 0
	return s
}

type jestJSONReport struct {
	NumTotalTests  int `json:"numTotalTests"`
	NumPassedTests int `json:"numPassedTests"`
	NumFailedTests int `json:"numFailedTests"`
	TestResults    []struct {
		AssertionResults []struct {
			FullName string `json:"fullName"`
			Status   string `json:"status"`
		} `json:"assertionResults"`
	} `json:"testResults"`
}

// ParseJestLike handles jest and vitest's compatible JSON reporter shape.
func ParseJestLike(framework Framework, stdout string) Summary {
	var report jestJSONReport
	s := Summary{Framework: framework}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		return s
	}
	s.Total = report.NumTotalTests
	s.Passed = report.NumPassedTests
	s.Failed = report.NumFailedTests
	for _, tr := range report.TestResults {
		for _, a := range tr.AssertionResults {
			s.Tests = append(s.Tests, TestCase{Name: a.FullName, Passed: a.Status == "passed"})
		}
	}
	s.Success = s.Failed == 0 && s.Total > 0
	return s
}

var unittestSummaryRe = regexp.MustCompile(`Ran (\d+) tests? in`)
var unittestFailuresRe = regexp.MustCompile(`FAILED \(([^)]*)\)`)
var unittestFailCountRe = regexp.MustCompile(`(failures|errors)=(\d+)`)
var unittestPerTestRe = regexp.MustCompile(`(?m)^(\w+) \([\w.]+\) \.\.\. (ok|FAIL|ERROR)$`)

// ParseUnittest applies the regex totals/per-test extraction spec §4.10
// asks for on unittest's verbose text output.
func ParseUnittest(stdout string) Summary {
	s := Summary{Framework: Unittest}
	if m := unittestSummaryRe.FindStringSubmatch(stdout); m != nil {
		s.Total = atoi(m[1])
	}
	failed := 0
	if m := unittestFailuresRe.FindStringSubmatch(stdout); m != nil {
		for _, fm := range unittestFailCountRe.FindAllStringSubmatch(m[1], -1) {
			failed += atoi(fm[2])
		}
	}
	s.Failed = failed
	s.Passed = s.Total - s.Failed
	if s.Passed < 0 {
		s.Passed = 0
	}
	for _, m := range unittestPerTestRe.FindAllStringSubmatch(stdout, -1) {
		s.Tests = append(s.Tests, TestCase{Name: m[1], Passed: m[2] == "ok"})
	}
	s.Success = s.Failed == 0 && s.Total > 0
	return s
}

type mochaJSONReport struct {
	Stats struct {
		Tests   int `json:"tests"`
		Passes  int `json:"passes"`
		Failures int `json:"failures"`
	} `json:"stats"`
	Tests []struct {
		FullTitle string `json:"fullTitle"`
	} `json:"tests"`
	Failures []struct {
		FullTitle string `json:"fullTitle"`
	} `json:"failures"`
}

// ParseMocha handles mocha's --reporter=json shape.
func ParseMocha(stdout string) Summary {
	var report mochaJSONReport
	s := Summary{Framework: Mocha}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		return s
	}
	s.Total = report.Stats.Tests
	s.Passed = report.Stats.Passes
	s.Failed = report.Stats.Failures
	failedNames := map[string]bool{}
	for _, f := range report.Failures {
		failedNames[f.FullTitle] = true
	}
	for _, tc := range report.Tests {
		s.Tests = append(s.Tests, TestCase{Name: tc.FullTitle, Passed: !failedNames[tc.FullTitle]})
	}
	s.Success = s.Failed == 0 && s.Total > 0
	return s
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
