package orchestrator

import (
	"encoding/json"
	"fmt"

	"github.com/collegue/specmcp/internal/contract"
)

// ChainStep is one entry of a tool chain: the tool to call, fixed arguments
// always passed to it, and a mapping from destination-argument name to a
// dotted JSON path into this step's result, applied to the *next* step's
// arguments (spec §4.3, §8 scenario 5).
type ChainStep struct {
	ToolName      string
	FixedArgs     map[string]any
	ResultMapping map[string]string // dest arg name -> json path into this step's result
}

// CreateToolChain validates that every referenced tool exists, then
// registers a new synthetic tool named chainName whose execution runs each
// step in order, short-circuiting on the first error. Returns false if any
// referenced tool is missing or chainName is already registered.
func (o *Orchestrator) CreateToolChain(chainName string, steps []ChainStep) bool {
	for _, s := range steps {
		if _, ok := o.GetTool(s.ToolName); !ok {
			return false
		}
	}

	ct := &chainTool{
		name:  chainName,
		steps: steps,
		orch:  o,
	}
	return o.RegisterTool(ct)
}

// chainTool implements contract.Tool for a registered tool chain.
type chainTool struct {
	name  string
	steps []ChainStep
	orch  *Orchestrator
}

func (c *chainTool) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Name:        c.name,
		Description: fmt.Sprintf("tool chain of %d steps", len(c.steps)),
		Category:    "chain",
	}
}

func (c *chainTool) RequestSchema() json.RawMessage  { return nil }
func (c *chainTool) ResponseSchema() json.RawMessage { return nil }

func (c *chainTool) Core(ec *contract.ExecContext, _ map[string]any) (map[string]any, error) {
	currentArgs := map[string]any{}
	var prevResult map[string]any
	var prevMapping map[string]string
	completed := 0
	total := len(c.steps)

	for _, step := range c.steps {
		stepArgs := make(map[string]any, len(currentArgs)+len(step.FixedArgs))
		for k, v := range currentArgs {
			stepArgs[k] = v
		}
		for k, v := range step.FixedArgs {
			stepArgs[k] = v
		}
		if prevMapping != nil {
			for dest, path := range prevMapping {
				if val, ok := extractPath(prevResult, path); ok {
					stepArgs[dest] = val
				}
			}
		}

		tool, ok := c.orch.GetTool(step.ToolName)
		if !ok {
			return map[string]any{
				"completed_steps": completed,
				"total_steps":     total,
				"error":           fmt.Sprintf("tool not found: %s", step.ToolName),
			}, nil
		}

		result, _, err := contract.Execute(tool, ec, stepArgs)
		if err != nil {
			return map[string]any{
				"completed_steps": completed,
				"total_steps":     total,
				"error":           err.Error(),
			}, nil
		}
		if contract.IsErrorResult(result) {
			return map[string]any{
				"completed_steps": completed,
				"total_steps":     total,
				"error":           result["error"],
			}, nil
		}

		completed++
		currentArgs = stepArgs
		prevResult = result
		prevMapping = step.ResultMapping
	}

	out := make(map[string]any, len(prevResult)+2)
	for k, v := range prevResult {
		out[k] = v
	}
	out["completed_steps"] = completed
	out["total_steps"] = total
	return out, nil
}
