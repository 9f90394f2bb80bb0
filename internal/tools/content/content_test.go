package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/parser"
)

const sampleFunc = "def add(a, b):\n    return a + b\n"

func TestGenerationTool_LocalFallback_NoLLMConfigured(t *testing.T) {
	tool := NewGenerationTool(parser.New())
	result, err := tool.Core(&contract.ExecContext{}, map[string]any{
		"description": "add two numbers",
		"language":    "python",
	})
	require.NoError(t, err)
	assert.Equal(t, "local_fallback", result["source"])
	assert.Contains(t, result["code"], "TODO: add two numbers")
}

func TestGenerationTool_RejectsMissingDescription(t *testing.T) {
	tool := NewGenerationTool(parser.New())
	_, err := tool.Core(&contract.ExecContext{}, map[string]any{"language": "python"})
	require.Error(t, err)
	var te *contract.ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, contract.KindValidation, te.Kind)
}

func TestExplanationTool_LocalFallback_SummarizesStructure(t *testing.T) {
	tool := NewExplanationTool(parser.New())
	result, err := tool.Core(&contract.ExecContext{}, map[string]any{
		"code":     sampleFunc,
		"language": "python",
	})
	require.NoError(t, err)
	assert.Equal(t, "local_fallback", result["source"])
	assert.Contains(t, result["explanation"], "1 function")
}

func TestExplanationTool_RejectsMissingCode(t *testing.T) {
	tool := NewExplanationTool(parser.New())
	_, err := tool.Core(&contract.ExecContext{}, map[string]any{"language": "python"})
	require.Error(t, err)
}

func TestRefactoringTool_LocalFallback_TrimsTrailingWhitespaceAndCollapsesBlankRuns(t *testing.T) {
	tool := NewRefactoringTool(parser.New())
	code := "def f():   \n\n\n\n    return 1   \n"
	result, err := tool.Core(&contract.ExecContext{}, map[string]any{
		"code":     code,
		"language": "python",
	})
	require.NoError(t, err)
	assert.Equal(t, "local_fallback", result["source"])
	refactored := result["refactored_code"].(string)
	assert.NotContains(t, refactored, "   \n")
	metrics := result["metrics"].(map[string]any)
	assert.Contains(t, metrics, "lines_delta")
}

func TestRefactoringTool_RejectsMissingLanguage(t *testing.T) {
	tool := NewRefactoringTool(parser.New())
	_, err := tool.Core(&contract.ExecContext{}, map[string]any{"code": sampleFunc})
	require.Error(t, err)
}

func TestDocumentationTool_LocalFallback_ListsSymbols(t *testing.T) {
	tool := NewDocumentationTool(parser.New())
	result, err := tool.Core(&contract.ExecContext{}, map[string]any{
		"code":     sampleFunc,
		"language": "python",
		"format":   "docstring",
	})
	require.NoError(t, err)
	assert.Equal(t, "local_fallback", result["source"])
	assert.Equal(t, "docstring", result["format"])
	assert.Contains(t, result["documentation"], `"""`)
	assert.Contains(t, result["documentation"], "add(a, b)")
}

func TestDocumentationTool_DefaultsToMarkdownFormat(t *testing.T) {
	tool := NewDocumentationTool(parser.New())
	result, err := tool.Core(&contract.ExecContext{}, map[string]any{
		"code":     sampleFunc,
		"language": "python",
	})
	require.NoError(t, err)
	assert.Equal(t, "markdown", result["format"])
	assert.Contains(t, result["documentation"], "## Documentation")
}

func TestConvertFormat_PlainPassesThrough(t *testing.T) {
	assert.Equal(t, "hello", convertFormat("hello", "plain"))
}

func TestTestGenerationTool_LocalFallback_EmitsOneStubPerFunction(t *testing.T) {
	tool := NewTestGenerationTool(parser.New())
	result, err := tool.Core(&contract.ExecContext{}, map[string]any{
		"code":     sampleFunc,
		"language": "python",
	})
	require.NoError(t, err)
	assert.Equal(t, "local_fallback", result["source"])
	assert.Equal(t, "pytest", result["framework"])
	assert.Contains(t, result["test_code"], "def test_add():")
	metrics := result["metrics"].(map[string]any)
	assert.Equal(t, 1, metrics["functions_total"])
	assert.Equal(t, 1, metrics["functions_mentioned"])
	assert.Equal(t, 1.0, metrics["estimated_coverage"])
}

func TestTestGenerationTool_DefaultsToJestForJavaScript(t *testing.T) {
	tool := NewTestGenerationTool(parser.New())
	result, err := tool.Core(&contract.ExecContext{}, map[string]any{
		"code":     "function add(a, b) { return a + b; }",
		"language": "javascript",
	})
	require.NoError(t, err)
	assert.Equal(t, "jest", result["framework"])
}

func TestTestGenerationTool_RejectsMissingCode(t *testing.T) {
	tool := NewTestGenerationTool(parser.New())
	_, err := tool.Core(&contract.ExecContext{}, map[string]any{"language": "python"})
	require.Error(t, err)
}
