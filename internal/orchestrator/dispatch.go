package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/collegue/specmcp/internal/contract"
)

// ExecuteTool is the blocking dispatch entry (spec §5 regime 1): validate,
// then call the tool's core routine directly on the calling goroutine.
// Argument errors, unknown-tool errors, and core exceptions are all
// returned as a result map, never as a Go error — per spec §4.3/§7,
// failures are returned, not raised, across this boundary.
func (o *Orchestrator) ExecuteTool(ctx context.Context, ec *contract.ExecContext, name string, args map[string]any) map[string]any {
	return o.dispatch(ctx, ec, name, args, false)
}

// ExecuteToolAsync is the cooperative dispatch entry (spec §5 regimes 1–2):
// if the tool is declared suspendable, its core runs on the calling
// goroutine; otherwise the core is offloaded to the bounded worker pool so
// a blocking call does not stall whatever scheduler invoked
// ExecuteToolAsync. Either way, ProgressStart and ProgressDone are reported
// to ec.Progress.
func (o *Orchestrator) ExecuteToolAsync(ctx context.Context, ec *contract.ExecContext, name string, args map[string]any) map[string]any {
	return o.dispatch(ctx, ec, name, args, true)
}

func (o *Orchestrator) dispatch(ctx context.Context, ec *contract.ExecContext, name string, args map[string]any, cooperative bool) map[string]any {
	t, ok := o.GetTool(name)
	if !ok {
		return contract.ErrorResult(contract.NewValidationError(fmt.Sprintf("tool not found: %s", name)))
	}

	d := t.Descriptor()
	vr := ValidateArgs(d, args)
	if !vr.Valid {
		return contract.ErrorResult(contract.NewValidationError(vr.Error))
	}

	snapshot := snapshotArgs(args)
	var result map[string]any
	var execErr error

	if cooperative && ec != nil && ec.Progress != nil {
		ec.Progress.Report(contract.ProgressStart, name)
	}

	if cooperative && !d.Suspendable {
		result, execErr = o.runOffloaded(ctx, t, ec, args)
	} else {
		result, execErr = o.runDirect(t, ec, args)
	}

	if cooperative && ec != nil && ec.Progress != nil {
		ec.Progress.Report(contract.ProgressDone, name)
	}

	success := execErr == nil
	if execErr != nil {
		result = contract.ErrorResult(execErr)
	} else if contract.IsErrorResult(result) {
		success = false
	}

	o.addToExecutionHistory(ExecutionRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		ToolName:  name,
		Args:      snapshot,
		Result:    result,
		Success:   success,
	})

	return result
}

func (o *Orchestrator) runDirect(t contract.Tool, ec *contract.ExecContext, args map[string]any) (map[string]any, error) {
	result, _, err := contract.Execute(t, ec, args)
	return result, err
}

// runOffloaded runs t's core on a worker-pool goroutine and blocks for
// either completion or ctx cancellation — the Go rendering of spec §9's
// "dedicated worker pool and blocking wait with timeout" redesign note for
// replacing an `asyncio.run`-inside-sync pattern.
func (o *Orchestrator) runOffloaded(ctx context.Context, t contract.Tool, ec *contract.ExecContext, args map[string]any) (map[string]any, error) {
	type out struct {
		result map[string]any
		err    error
	}
	done := make(chan out, 1)

	select {
	case o.workers <- struct{}{}:
	case <-ctx.Done():
		return nil, contract.NewExecutionError("worker pool saturated", ctx.Err())
	}

	go func() {
		defer func() { <-o.workers }()
		result, _, err := contract.Execute(t, ec, args)
		done <- out{result, err}
	}()

	select {
	case r := <-done:
		return r.result, r.err
	case <-ctx.Done():
		return nil, contract.NewExecutionError("tool execution cancelled", ctx.Err())
	}
}
