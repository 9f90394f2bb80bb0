// Package llm wires the content-generation tools of spec §4.11 to a real
// model provider. It implements contract.LLMHelper: every call either
// produces a real completion or reports itself unavailable, never
// panics, and every caller is expected to fall back to a deterministic
// local path via contract.ExecuteWithLLMFallback when it does.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/collegue/specmcp/internal/contract"
)

// Provider is a single backend capable of producing a text completion.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req contract.SampleRequest) (string, error)
}

// Manager selects between configured providers and exposes the
// contract.LLMHelper surface the tool layer depends on.
type Manager struct {
	provider Provider
	logger   *slog.Logger
	limiter  *rate.Limiter
}

// NewManager builds a Manager. A nil provider is valid: it represents the
// "none" configuration (spec §9 notes LLM usage is optional everywhere),
// and Available() reports false so every caller takes its local fallback.
func NewManager(provider Provider, logger *slog.Logger) *Manager {
	return NewManagerWithRateLimit(provider, logger, 0)
}

// NewManagerWithRateLimit builds a Manager that throttles outgoing sample
// requests to requestsPerSecond (<= 0 disables throttling) — every content
// tool shares this one limiter through the same Manager instance, so a
// burst of concurrent tool calls can't all hit the provider at once.
func NewManagerWithRateLimit(provider Provider, logger *slog.Logger, requestsPerSecond float64) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &Manager{provider: provider, logger: logger, limiter: limiter}
}

// Available reports whether a provider is configured at all.
func (m *Manager) Available() bool {
	return m.provider != nil
}

// SampleLLM implements contract.LLMHelper. A provider failure is logged
// here and returned, not swallowed, so ExecuteWithLLMFallback falls back
// to its local path.
func (m *Manager) SampleLLM(ctx context.Context, req contract.SampleRequest) (*contract.SampleResult, error) {
	if m.provider == nil {
		return nil, fmt.Errorf("llm: no provider configured")
	}
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	text, err := m.provider.Complete(ctx, req)
	if err != nil {
		m.logger.Warn("llm completion failed", "provider", m.provider.Name(), "error", err)
		return nil, err
	}
	result := &contract.SampleResult{Text: text}
	if req.ResultSchema != nil {
		if parsed, perr := contract.ParseStructured(text); perr == nil {
			result.Structured = parsed
		}
	}
	return result, nil
}
