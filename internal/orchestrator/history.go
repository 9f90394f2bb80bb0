package orchestrator

import (
	"time"
)

// ExecutionRecord is the spec §3 "Execution record": a monotonic timestamp,
// the tool name, a snapshot copy of the arguments, the result payload, and
// a derived success flag. ID is a server-generated correlation handle, not
// part of the spec's data model — useful for clients cross-referencing a
// record against logs or a chain's step results.
type ExecutionRecord struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	ToolName  string         `json:"tool_name"`
	Args      map[string]any `json:"args"`
	Result    map[string]any `json:"result"`
	Success   bool           `json:"success"`
}

// addToExecutionHistory appends a record, evicting the oldest entry once
// the bounded FIFO (capacity maxExecutionHistory) is full. Called exactly
// once per tool invocation, in call order, per spec §5's ordering guarantee.
func (o *Orchestrator) addToExecutionHistory(rec ExecutionRecord) {
	o.histMu.Lock()
	defer o.histMu.Unlock()

	o.history = append(o.history, rec)
	if len(o.history) > maxExecutionHistory {
		o.history = o.history[len(o.history)-maxExecutionHistory:]
	}
}

// ExecutionHistory returns a snapshot copy of the execution history,
// oldest first.
func (o *Orchestrator) ExecutionHistory() []ExecutionRecord {
	o.histMu.Lock()
	defer o.histMu.Unlock()

	out := make([]ExecutionRecord, len(o.history))
	copy(out, o.history)
	return out
}

func snapshotArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}
