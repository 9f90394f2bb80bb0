package testrunner

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegue/specmcp/internal/contract"
)

func TestNewSandbox_WritesSourceAndTestFiles(t *testing.T) {
	sb, err := NewSandbox("python", "def add(a, b):\n    return a + b\n", "def test_add():\n    assert add(1,1)==2\n")
	require.NoError(t, err)
	defer sb.Cleanup()

	_, err = os.Stat(sb.Dir + "/module_under_test.py")
	assert.NoError(t, err)
	_, err = os.Stat(sb.Dir + "/test_module.py")
	assert.NoError(t, err)
}

func TestSandbox_CleanupRemovesDirectory(t *testing.T) {
	sb, err := NewSandbox("python", "", "pass\n")
	require.NoError(t, err)
	dir := sb.Dir
	sb.Cleanup()
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestDetectFramework_DefaultsToPytestForPython(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, Pytest, DetectFramework("python", dir))
}

func TestCompatible_RejectsMismatch(t *testing.T) {
	assert.False(t, Compatible("python", Jest))
	assert.True(t, Compatible("python", Pytest))
}

func TestBuildInvocation_Pytest(t *testing.T) {
	inv := BuildInvocation(Pytest, "/tmp/sandbox")
	assert.Equal(t, "pytest", inv.Binary)
	assert.Contains(t, inv.Args, "/tmp/sandbox")
}

func TestParsePytest_FallsBackToTextSummaryWithoutJSON(t *testing.T) {
	summary := ParsePytest("===== 1 passed, 1 failed in 0.12s =====", nil)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Total)
	assert.False(t, summary.Success)
}

func TestParsePytest_PrefersJSONReportWhenPresent(t *testing.T) {
	report := []byte(`{
		"summary": {"total": 2, "passed": 1, "failed": 1},
		"tests": [
			{"nodeid": "test_module.py::test_a", "outcome": "passed"},
			{"nodeid": "test_module.py::test_b", "outcome": "failed"}
		]
	}`)
	summary := ParsePytest("", report)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.False(t, summary.Success)
}

func TestParseJestLike_ParsesNumericTotals(t *testing.T) {
	stdout := `{"numTotalTests": 3, "numPassedTests": 2, "numFailedTests": 1, "testResults": []}`
	summary := ParseJestLike(Jest, stdout)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
}

func TestParseUnittest_ExtractsTotalsFromVerboseOutput(t *testing.T) {
	stdout := "test_a (mod.Case) ... ok\ntest_b (mod.Case) ... FAIL\n\nRan 2 tests in 0.01s\n\nFAILED (failures=1)\n"
	summary := ParseUnittest(stdout)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Passed)
}

func TestClampTimeout_ClampsAboveMax(t *testing.T) {
	assert.Equal(t, 600.0, ClampTimeout(9999).Seconds())
}

// TestScenario6_PytestSandbox verifies spec §8 scenario 6 exactly, against
// a real pytest binary when one is on PATH.
func TestScenario6_PytestSandbox(t *testing.T) {
	if _, err := exec.LookPath("pytest"); err != nil {
		t.Skip("pytest not available on PATH")
	}

	tool := New()
	args := map[string]any{
		"language":       "python",
		"source_content": "def add(a, b):\n    return a + b\n",
		"test_content":   "from module_under_test import add\n\ndef test_pass():\n    assert add(1, 2) == 3\n\ndef test_fail():\n    assert add(1, 2) == 4\n",
	}
	result, err := tool.Core(&contract.ExecContext{}, args)
	require.NoError(t, err)

	assert.Equal(t, Pytest, result["framework"])
	assert.Equal(t, 2, result["total"])
	assert.Equal(t, 1, result["passed"])
	assert.Equal(t, 1, result["failed"])
	assert.False(t, result["success"].(bool))
	assert.NotEmpty(t, result["command"])
}

func TestTool_Core_RejectsMissingTargetAndTestContent(t *testing.T) {
	tool := New()
	_, err := tool.Core(&contract.ExecContext{}, map[string]any{"language": "python"})
	require.Error(t, err)
}
