package consistency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/finding"
	"github.com/collegue/specmcp/internal/parser"
)

// TestScenario3_UnusedImportOnly verifies spec §8 scenario 3 exactly.
func TestScenario3_UnusedImportOnly(t *testing.T) {
	tool := New(parser.New())
	args := map[string]any{
		"files": []any{
			map[string]any{
				"path":    "a.py",
				"content": "import os\nimport json\nprint(os.getcwd())",
			},
		},
		"checks":   []any{"unused_imports"},
		"language": "python",
	}
	result, err := tool.Core(&contract.ExecContext{}, args)
	require.NoError(t, err)

	findings := result["findings"].([]finding.Finding)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, "unused_import", f.Type)
	assert.Equal(t, "json", extractName(f.Message))
	assert.Equal(t, 2, f.Line)
	assert.Equal(t, finding.Low, f.Severity)
	assert.GreaterOrEqual(t, f.Confidence, 80)
}

func extractName(msg string) string {
	start := indexOf(msg, "'") + 1
	end := indexOf(msg[start:], "'") + start
	return msg[start:end]
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestCheckUnusedImportsPython_IgnoresUsedImport(t *testing.T) {
	f := File{Path: "a.py", Content: "import os\nprint(os.getcwd())\n"}
	findings := CheckUnusedImportsPython(parser.New(), f)
	assert.Empty(t, findings)
}

func TestCheckUnusedVariablesPython_FlagsAssignedButUnreadLocal(t *testing.T) {
	content := "def f():\n    x = 1\n    y = 2\n    return y\n"
	f := File{Path: "a.py", Content: content}
	findings := CheckUnusedVariablesPython(parser.New(), f)
	require.Len(t, findings, 1)
	assert.Equal(t, "unused_variable", findings[0].Type)
}

func TestCheckDeadCodePython_FlagsNeverReferencedFunction(t *testing.T) {
	content := "def used():\n    pass\n\ndef unused_helper():\n    pass\n\nused()\n"
	files := []File{{Path: "a.py", Content: content}}
	findings := CheckDeadCodePython(parser.New(), files)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "unused_helper")
	assert.Equal(t, 70, findings[0].Confidence)
}

func TestCheckDuplication_FindsCrossFileDuplicateBlock(t *testing.T) {
	block := "line one\nline two\nline three\nline four\nline five\nline six\n"
	files := []File{
		{Path: "a.py", Content: block},
		{Path: "b.py", Content: "unrelated\n" + block},
	}
	findings := CheckDuplication(files, 6)
	require.NotEmpty(t, findings)
	assert.Equal(t, "duplication", findings[0].Type)
}

func TestCheckDuplication_IgnoresSameFileRepeats(t *testing.T) {
	block := "line one\nline two\nline three\nline four\nline five\nline six\n"
	files := []File{{Path: "a.py", Content: block + block}}
	findings := CheckDuplication(files, 6)
	for _, f := range findings {
		assert.NotEqual(t, f.File, f.File)
	}
}

func TestCheckUnresolvedSymbolsPython_FlagsUndefinedName(t *testing.T) {
	content := "def f():\n    return totally_undefined_name\n"
	f := File{Path: "a.py", Content: content}
	findings := CheckUnresolvedSymbolsPython(parser.New(), f)
	require.NotEmpty(t, findings)
	found := false
	for _, fd := range findings {
		if fd.Message != "" && fd.Type == "unresolved_symbol" {
			found = true
			assert.Equal(t, 60, fd.Confidence)
			assert.Equal(t, finding.High, fd.Severity)
		}
	}
	assert.True(t, found)
}

func TestTool_MinConfidenceFiltersLowerConfidenceFindings(t *testing.T) {
	tool := New(parser.New())
	args := map[string]any{
		"files": []any{
			map[string]any{
				"path":    "a.py",
				"content": "import os\nimport json\nprint(os.getcwd())",
			},
		},
		"checks":         []any{"unused_imports"},
		"min_confidence": 95,
	}
	result, err := tool.Core(&contract.ExecContext{}, args)
	require.NoError(t, err)
	findings := result["findings"].([]finding.Finding)
	assert.Empty(t, findings)
}

func TestTool_RejectsEmptyFiles(t *testing.T) {
	tool := New(parser.New())
	_, err := tool.Core(&contract.ExecContext{}, map[string]any{"files": []any{}})
	require.Error(t, err)
}

func TestTool_DeepModeRequiredForUnresolvedSymbols(t *testing.T) {
	tool := New(parser.New())
	args := map[string]any{
		"files": []any{
			map[string]any{"path": "a.py", "content": "def f():\n    return nope_undefined\n"},
		},
		"checks": []any{"unresolved_symbols"},
	}
	result, err := tool.Core(&contract.ExecContext{}, args)
	require.NoError(t, err)
	performed := result["checks_performed"].([]string)
	assert.NotContains(t, performed, "unresolved_symbols")
}
