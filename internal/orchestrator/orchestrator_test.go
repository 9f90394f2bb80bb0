package orchestrator

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegue/specmcp/internal/contract"
)

type arithTool struct {
	name string
	op   func(a, b float64) float64
}

func (t *arithTool) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Name:         t.name,
		Description:  t.name + " two numbers",
		Category:     "arithmetic",
		RequiredArgs: []string{"a", "b"},
	}
}

func (t *arithTool) RequestSchema() json.RawMessage  { return nil }
func (t *arithTool) ResponseSchema() json.RawMessage { return nil }

func (t *arithTool) Core(_ *contract.ExecContext, args map[string]any) (map[string]any, error) {
	a, _ := args["a"].(float64)
	b, _ := args["b"].(float64)
	return map[string]any{"result": t.op(a, b)}, nil
}

func newOrchestratorWithArith(t *testing.T) *Orchestrator {
	t.Helper()
	o := New(4)
	require.True(t, o.RegisterTool(&arithTool{name: "add", op: func(a, b float64) float64 { return a + b }}))
	require.True(t, o.RegisterTool(&arithTool{name: "multiply", op: func(a, b float64) float64 { return a * b }}))
	return o
}

func TestRegisterTool_RejectsDuplicateName(t *testing.T) {
	o := newOrchestratorWithArith(t)
	ok := o.RegisterTool(&arithTool{name: "add", op: func(a, b float64) float64 { return a - b }})
	assert.False(t, ok)

	tools := o.ListTools("")
	count := 0
	for _, d := range tools {
		if d.Name == "add" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestValidateArgs_MissingRequired(t *testing.T) {
	o := newOrchestratorWithArith(t)
	tool, ok := o.GetTool("add")
	require.True(t, ok)

	res := ValidateArgs(tool.Descriptor(), map[string]any{"a": 5.0})
	assert.False(t, res.Valid)
	assert.Contains(t, res.MissingArgs, "b")
}

func TestValidateArgs_UnknownArgsAreWarnings(t *testing.T) {
	o := newOrchestratorWithArith(t)
	tool, _ := o.GetTool("add")

	res := ValidateArgs(tool.Descriptor(), map[string]any{"a": 1.0, "b": 2.0, "c": 3.0, "context": "s1"})
	assert.True(t, res.Valid)
	assert.Len(t, res.Warnings, 1)
}

func TestExecuteTool_UnknownToolReturnsErrorResult(t *testing.T) {
	o := newOrchestratorWithArith(t)
	result := o.ExecuteTool(context.Background(), &contract.ExecContext{}, "missing", map[string]any{})
	assert.True(t, contract.IsErrorResult(result))
}

func TestExecuteTool_RecordsExactlyOneHistoryEntry(t *testing.T) {
	o := newOrchestratorWithArith(t)
	o.ExecuteTool(context.Background(), &contract.ExecContext{}, "add", map[string]any{"a": 1.0, "b": 2.0})

	hist := o.ExecutionHistory()
	require.Len(t, hist, 1)
	assert.Equal(t, "add", hist[0].ToolName)
	assert.True(t, hist[0].Success)
}

func TestExecutionHistory_BoundedAt100(t *testing.T) {
	o := newOrchestratorWithArith(t)
	for i := 0; i < 150; i++ {
		o.ExecuteTool(context.Background(), &contract.ExecContext{}, "add", map[string]any{"a": 1.0, "b": 2.0})
	}
	assert.LessOrEqual(t, len(o.ExecutionHistory()), maxExecutionHistory)
}

// TestToolChain_Scenario5 mirrors the spec's concrete end-to-end scenario:
// add(5,3)=8, then multiply(2, mapped b=8) = 16, completed_steps=total_steps=2.
func TestToolChain_Scenario5(t *testing.T) {
	o := newOrchestratorWithArith(t)

	ok := o.CreateToolChain("add_then_multiply", []ChainStep{
		{ToolName: "add", FixedArgs: map[string]any{"a": 5.0, "b": 3.0}, ResultMapping: map[string]string{"b": "result"}},
		{ToolName: "multiply", FixedArgs: map[string]any{"a": 2.0}},
	})
	require.True(t, ok)

	result := o.ExecuteTool(context.Background(), &contract.ExecContext{}, "add_then_multiply", map[string]any{})
	require.False(t, contract.IsErrorResult(result))
	assert.Equal(t, 16.0, result["result"])
	assert.EqualValues(t, 2, result["completed_steps"])
	assert.EqualValues(t, 2, result["total_steps"])
}

func TestSuggestTools_ExcludesZeroScoreAndRanksByScore(t *testing.T) {
	o := New(2)
	require.True(t, o.RegisterTool(&arithTool{name: "secret_scan", op: func(a, b float64) float64 { return a }}))
	require.True(t, o.RegisterTool(&arithTool{name: "unrelated_tool", op: func(a, b float64) float64 { return a }}))

	suggestions := o.SuggestTools("run secret_scan on this file", nil)
	var names []string
	for _, s := range suggestions {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "secret_scan")
	assert.NotContains(t, names, "unrelated_tool")
}

func TestGetToolDependencies_Recursive(t *testing.T) {
	o := New(2)
	leaf := &arithTool{name: "leaf", op: func(a, b float64) float64 { return a }}
	mid := &arithTool{name: "mid", op: func(a, b float64) float64 { return a }}
	top := &arithTool{name: "top", op: func(a, b float64) float64 { return a }}
	require.True(t, o.RegisterTool(leaf))

	midD := mid.Descriptor()
	midD.Dependencies = []string{"leaf"}
	o.tools["mid"] = &descriptorOverride{arithTool: mid, d: midD}
	o.order = append(o.order, "mid")
	o.dependencies["mid"] = []string{"leaf"}

	topD := top.Descriptor()
	topD.Dependencies = []string{"mid"}
	o.tools["top"] = &descriptorOverride{arithTool: top, d: topD}
	o.order = append(o.order, "top")
	o.dependencies["top"] = []string{"mid"}

	deps := o.GetToolDependencies("top", true)
	assert.ElementsMatch(t, []string{"mid", "leaf"}, deps)
}

// descriptorOverride lets a test attach declared Dependencies to an
// arithTool without changing the production Descriptor() signature.
type descriptorOverride struct {
	*arithTool
	d contract.Descriptor
}

func (o *descriptorOverride) Descriptor() contract.Descriptor { return o.d }
