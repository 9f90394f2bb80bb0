package main

import (
	"context"
	"encoding/json"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/mcp"
	"github.com/collegue/specmcp/internal/orchestrator"
)

// toolAdapter bridges one orchestrator-registered contract.Tool onto
// mcp.Registry's own Tool interface, so the MCP transport layer never has
// to know about the orchestrator's validate/dispatch/history pipeline — it
// only sees a name, a schema, and an Execute call.
type toolAdapter struct {
	orch *orchestrator.Orchestrator
	ec   *contract.ExecContext
	desc contract.Descriptor
}

func adaptTool(orch *orchestrator.Orchestrator, ec *contract.ExecContext, d contract.Descriptor) mcp.Tool {
	return &toolAdapter{orch: orch, ec: ec, desc: d}
}

func (a *toolAdapter) Name() string        { return a.desc.Name }
func (a *toolAdapter) Description() string { return a.desc.Description }

func (a *toolAdapter) InputSchema() json.RawMessage {
	t, ok := a.orch.GetTool(a.desc.Name)
	if !ok {
		return json.RawMessage(`{"type":"object"}`)
	}
	if schema := t.RequestSchema(); schema != nil {
		return schema
	}
	return json.RawMessage(`{"type":"object"}`)
}

// Execute unmarshals the JSON-RPC arguments, runs the tool through the
// orchestrator's blocking dispatch (which never raises — failures come
// back as an {error, exception_type} result map per spec §4.3/§7), and
// renders the result map as a single JSON text content block.
func (a *toolAdapter) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	args := map[string]any{}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &args); err != nil {
			return mcp.ErrorResult("invalid arguments: " + err.Error()), nil
		}
	}

	result := a.orch.ExecuteTool(ctx, a.ec, a.desc.Name, args)

	if a.ec != nil && a.ec.Sessions != nil && a.ec.SessionID != "" {
		a.ec.Sessions.AddExecutionToContext(a.ec.SessionID, a.desc.Name, args, result)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return mcp.ErrorResult("failed to encode result: " + err.Error()), nil
	}

	return &mcp.ToolsCallResult{
		Content: []mcp.ContentBlock{mcp.TextContent(string(out))},
		IsError: contract.IsErrorResult(result),
	}, nil
}
