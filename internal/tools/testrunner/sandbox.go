// Package testrunner implements the Test Runner tool of spec §4.10:
// sandbox or target-path execution of a test suite, framework
// auto-detection, subprocess execution with a hard timeout, and
// framework-specific output parsing.
package testrunner

import (
	"fmt"
	"os"
	"path/filepath"
)

const sandboxPrefix = "collegue_run_tests_"

// Sandbox is a temp directory materialized for a test_content+
// source_content run. Cleanup always removes it, even on a later error
// (spec §4.10 "always clean up the temp directory").
type Sandbox struct {
	Dir string
}

// NewSandbox writes sourceContent (if any) as module_under_test.{ext} and
// testContent as the framework's conventional test filename, then returns
// a Sandbox pointing at the directory.
func NewSandbox(language, sourceContent, testContent string) (*Sandbox, error) {
	dir, err := os.MkdirTemp("", sandboxPrefix)
	if err != nil {
		return nil, fmt.Errorf("testrunner: creating sandbox: %w", err)
	}
	sb := &Sandbox{Dir: dir}

	ext := sourceExtension(language)
	if sourceContent != "" {
		sourcePath := filepath.Join(dir, "module_under_test"+ext)
		if err := os.WriteFile(sourcePath, []byte(sourceContent), 0o644); err != nil {
			sb.Cleanup()
			return nil, fmt.Errorf("testrunner: writing source: %w", err)
		}
	}

	testPath, body := testFileFor(language, dir, testContent)
	if err := os.WriteFile(testPath, []byte(body), 0o644); err != nil {
		sb.Cleanup()
		return nil, fmt.Errorf("testrunner: writing test file: %w", err)
	}
	return sb, nil
}

// Cleanup removes the sandbox directory. Safe to call multiple times.
func (s *Sandbox) Cleanup() {
	if s.Dir != "" {
		os.RemoveAll(s.Dir)
	}
}

func sourceExtension(language string) string {
	switch language {
	case "python":
		return ".py"
	case "typescript":
		return ".ts"
	case "javascript":
		return ".js"
	default:
		return ".txt"
	}
}

// testFileFor returns the framework-conventional test path and, for
// Python, prepends a sys.path prelude so the test can import
// module_under_test from the same directory.
func testFileFor(language, dir, testContent string) (string, string) {
	switch language {
	case "python":
		prelude := "import sys\nimport os\nsys.path.insert(0, os.path.dirname(__file__))\n\n"
		return filepath.Join(dir, "test_module.py"), prelude + testContent
	case "typescript":
		return filepath.Join(dir, "module.test.ts"), testContent
	case "javascript":
		return filepath.Join(dir, "module.test.js"), testContent
	default:
		return filepath.Join(dir, "module.test.txt"), testContent
	}
}
