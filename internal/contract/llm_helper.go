package contract

import (
	"context"
	"encoding/json"
)

// SampleRequest is the input to SampleLLM.
type SampleRequest struct {
	Prompt       string
	SystemPrompt string
	ResultSchema map[string]any // non-nil requests structured output
	Temperature  float64
}

// SampleResult carries the raw text and, when a ResultSchema was supplied
// and the provider honored it, the parsed structured object.
type SampleResult struct {
	Text       string
	Structured map[string]any
}

// LLMHelper is the narrow LLM contract tools depend on (spec §4.2). It is
// implemented by internal/llm.Manager; tools never see a provider client
// directly, only this interface, which is the sole coupling point to any
// specific LLM vendor (spec §4.11).
type LLMHelper interface {
	// SampleLLM sends the request to the configured LLM provider; the
	// llm.Manager implementation has no session-sampling path. If
	// ResultSchema is set, it attempts to JSON-parse the response into
	// Structured; Text always carries the raw response.
	SampleLLM(ctx context.Context, req SampleRequest) (*SampleResult, error)
	// Available reports whether any LLM provider is configured.
	Available() bool
}

// ExecuteWithLLMFallback runs buildContext to assemble the prompt pieces,
// calls llm.SampleLLM, and parses the output with parseLLMOutput. If llm is
// nil, llm.Available() is false, or any step errors, it silently runs
// localFallback and returns its result instead — the spec's "LLM-assisted
// paths must always fall back to a deterministic local path" invariant.
func ExecuteWithLLMFallback(
	ctx context.Context,
	llm LLMHelper,
	buildContext func() SampleRequest,
	parseLLMOutput func(*SampleResult) (map[string]any, error),
	localFallback func() (map[string]any, error),
) (map[string]any, error) {
	if llm == nil || !llm.Available() {
		return localFallback()
	}

	req := buildContext()
	res, err := llm.SampleLLM(ctx, req)
	if err != nil {
		return localFallback()
	}

	parsed, err := parseLLMOutput(res)
	if err != nil {
		return localFallback()
	}
	return parsed, nil
}

// ParseStructured attempts to unmarshal text as JSON into a map, used by
// SampleLLM implementations when a provider returns only raw text even
// though a ResultSchema was requested.
func ParseStructured(text string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, err
	}
	return out, nil
}
