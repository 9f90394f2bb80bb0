// Package orchestrator implements the tool catalog, argument validation,
// sync/async dispatch, execution history, tool suggestion, and tool chains
// described in spec §4.3. It is a separate, business-level registry from
// internal/mcp.Registry: the mcp registry is transport-layer plumbing where
// a duplicate tool name at startup is a programmer error worth a panic;
// this Orchestrator is the spec's idempotent-rejecting catalog, where a
// duplicate registration at runtime is an expected, recoverable outcome
// (spec §3 "registration is idempotent-rejecting, never overwriting";
// §8 "registering two tools with the same name — second call returns a
// negative ack; registry unchanged").
package orchestrator

import (
	"sync"

	"github.com/collegue/specmcp/internal/contract"
)

const maxExecutionHistory = 100

// Orchestrator owns the tool catalog, the dependency graph, and the
// execution history. Per spec §3's ownership note, it holds a weak
// (injected, not owned) reference to the session manager and LLM manager —
// those are passed in via contract.ExecContext on each call, not stored here.
type Orchestrator struct {
	mu           sync.RWMutex
	tools        map[string]contract.Tool
	order        []string
	dependencies map[string][]string

	histMu  sync.Mutex
	history []ExecutionRecord

	workers chan struct{} // bounded worker pool for offloaded blocking tools
}

// New creates an empty Orchestrator. workerPoolSize bounds how many blocking
// tool cores may run concurrently when offloaded from the cooperative
// dispatch path; values <= 0 default to 8.
func New(workerPoolSize int) *Orchestrator {
	if workerPoolSize <= 0 {
		workerPoolSize = 8
	}
	return &Orchestrator{
		tools:        make(map[string]contract.Tool),
		dependencies: make(map[string][]string),
		workers:      make(chan struct{}, workerPoolSize),
	}
}

// RegisterTool adds a tool to the catalog. It fails (returns false) if a
// tool with the same name is already registered; the catalog is left
// unchanged in that case.
func (o *Orchestrator) RegisterTool(t contract.Tool) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	d := t.Descriptor()
	if _, exists := o.tools[d.Name]; exists {
		return false
	}
	o.tools[d.Name] = t
	o.order = append(o.order, d.Name)
	o.dependencies[d.Name] = append([]string(nil), d.Dependencies...)
	return true
}

// GetTool returns a tool by name.
func (o *Orchestrator) GetTool(name string) (contract.Tool, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	t, ok := o.tools[name]
	return t, ok
}

// ListTools returns descriptors for every registered tool, optionally
// filtered by category, in registration order.
func (o *Orchestrator) ListTools(category string) []contract.Descriptor {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]contract.Descriptor, 0, len(o.order))
	for _, name := range o.order {
		d := o.tools[name].Descriptor()
		if category != "" && d.Category != category {
			continue
		}
		out = append(out, d)
	}
	return out
}
