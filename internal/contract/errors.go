// Package contract defines the tool execution contract shared by every
// analyzer: error taxonomy, metrics, schema validation, and the LLM helper
// used by the content tools.
package contract

import "fmt"

// Kind classifies a ToolError by the taxonomy in spec §7 — by kind, not by
// Go type, so every tool core can return the same small set of error shapes.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindConfiguration   Kind = "configuration"
	KindExecution       Kind = "execution"
	KindExternalService Kind = "external_service"
	KindPartialFailure  Kind = "partial_failure"
)

// ToolError is the normalized error a tool core returns. It is never allowed
// to cross the orchestrator boundary as a panic; ExecuteTool always recovers
// and normalizes to this shape before recording the execution.
type ToolError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ToolError) Unwrap() error { return e.Err }

// ExceptionType mirrors the Python original's `exception_type` field in its
// {error, exception_type} result maps, so the wire format stays compatible.
func (e *ToolError) ExceptionType() string {
	switch e.Kind {
	case KindValidation:
		return "ToolValidationError"
	case KindConfiguration:
		return "ToolConfigurationError"
	case KindExecution:
		return "ToolExecutionError"
	case KindExternalService:
		return "ToolExternalServiceError"
	case KindPartialFailure:
		return "ToolPartialFailureError"
	default:
		return "ToolError"
	}
}

func NewValidationError(msg string) *ToolError {
	return &ToolError{Kind: KindValidation, Message: msg}
}

func NewConfigurationError(msg string) *ToolError {
	return &ToolError{Kind: KindConfiguration, Message: msg}
}

func NewExecutionError(msg string, err error) *ToolError {
	return &ToolError{Kind: KindExecution, Message: msg, Err: err}
}

func NewExternalServiceError(msg string, err error) *ToolError {
	return &ToolError{Kind: KindExternalService, Message: msg, Err: err}
}

func NewPartialFailureError(msg string) *ToolError {
	return &ToolError{Kind: KindPartialFailure, Message: msg}
}

// ErrorResult renders a ToolError as the {error, exception_type} wire shape
// every tool result collapses to at the contract boundary.
func ErrorResult(err error) map[string]any {
	var te *ToolError
	if as, ok := err.(*ToolError); ok {
		te = as
	} else {
		te = &ToolError{Kind: KindExecution, Message: err.Error()}
	}
	return map[string]any{
		"error":          te.Message,
		"exception_type": te.ExceptionType(),
	}
}

// IsErrorResult reports whether a result map carries an `error` key — the
// derived success flag used throughout the spec ("no `error` field in a
// mapping result").
func IsErrorResult(result map[string]any) bool {
	_, ok := result["error"]
	return ok
}
