package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/parser"
)

func TestExtractIdentifiers_EnglishVerbObject(t *testing.T) {
	ids := ExtractIdentifiers("rename the UserAccount to Account")
	assert.Contains(t, ids, "UserAccount")
}

func TestExtractIdentifiers_FrenchVerbObject(t *testing.T) {
	ids := ExtractIdentifiers("supprimer la fonction calculate_total")
	assert.Contains(t, ids, "calculate_total")
}

func TestExtractIdentifiers_SnakeAndPascalHeuristics(t *testing.T) {
	ids := ExtractIdentifiers("refactor user_service and OrderProcessor together")
	assert.Contains(t, ids, "user_service")
	assert.Contains(t, ids, "OrderProcessor")
}

func TestExtractEndpoints_HTTPMethodAndFetchCall(t *testing.T) {
	eps := ExtractEndpoints("call GET /api/users then fetch('/api/orders')")
	var sawUsers, sawOrders bool
	for _, e := range eps {
		if e.Path == "/api/users" {
			sawUsers = true
		}
		if e.Path == "/api/orders" {
			sawOrders = true
		}
	}
	assert.True(t, sawUsers)
	assert.True(t, sawOrders)
}

func TestFindImpactedFiles_MultipleOccurrencesAreHighConfidence(t *testing.T) {
	files := []File{
		{Path: "a.py", Content: "def calculate_total():\n    return calculate_total() + 1\n"},
	}
	impacted := FindImpactedFiles(parser.New(), files, []string{"calculate_total"}, Aggressive)
	require.NotEmpty(t, impacted)
	assert.Equal(t, "high", impacted[0].Confidence)
}

func TestFindImpactedFiles_ConservativeDropsMediumAndLow(t *testing.T) {
	files := []File{
		{Path: "a.py", Content: "calculate_total"},
	}
	impacted := FindImpactedFiles(parser.New(), files, []string{"calculate_total"}, Conservative)
	assert.Empty(t, impacted)
}

func TestAnalyzeRisks_DetectsSecurityAndBreakingChange(t *testing.T) {
	risks := AnalyzeRisks("delete the authentication token validation", "", nil)
	var sawBreaking, sawSecurity bool
	for _, r := range risks {
		if r.Category == BreakingChange {
			sawBreaking = true
		}
		if r.Category == Security {
			sawSecurity = true
		}
	}
	assert.True(t, sawBreaking)
	assert.True(t, sawSecurity)
}

func TestBuildSearchQueries_CapsAtTwenty(t *testing.T) {
	var ids []string
	for i := 0; i < 30; i++ {
		ids = append(ids, "identifier")
	}
	queries := BuildSearchQueries(ids, nil)
	assert.LessOrEqual(t, len(queries), 20)
}

func TestBuildTestCommands_PicksPytestForPythonFiles(t *testing.T) {
	cmds := BuildTestCommands([]ImpactedFile{{Path: "app/models.py"}})
	require.Len(t, cmds, 1)
	assert.Contains(t, cmds[0], "pytest")
}

func TestBuildFollowups_CapsAtTen(t *testing.T) {
	var risks []Risk
	for i := 0; i < 15; i++ {
		risks = append(risks, Risk{Category: Security})
	}
	followups := BuildFollowups(risks)
	assert.LessOrEqual(t, len(followups), 10)
}

func TestTool_Core_RejectsMissingIntent(t *testing.T) {
	tool := New(parser.New())
	_, err := tool.Core(&contract.ExecContext{}, map[string]any{"files": []any{}})
	require.Error(t, err)
}

func TestTool_Core_ReturnsExpectedShape(t *testing.T) {
	tool := New(parser.New())
	args := map[string]any{
		"intent": "rename the calculate_total function",
		"files": []any{
			map[string]any{"path": "a.py", "content": "def calculate_total():\n    return calculate_total()\n"},
		},
	}
	result, err := tool.Core(&contract.ExecContext{}, args)
	require.NoError(t, err)
	assert.Contains(t, result, "identifiers")
	assert.Contains(t, result, "impacted_files")
	assert.Contains(t, result, "risks")
	assert.Contains(t, result, "search_queries")
	assert.Contains(t, result, "test_commands")
	assert.Contains(t, result, "followups")
}
