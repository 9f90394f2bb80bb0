package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/collegue/specmcp/internal/config"
)

// NewManagerFromConfig builds a Manager from a resolved config.LLMConfig.
// Provider "none" (or an unset/unreadable API key) yields a Manager with
// no provider — Available() reports false and every caller takes its
// local fallback, never an error.
func NewManagerFromConfig(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Manager, error) {
	switch cfg.Provider {
	case "", "none":
		return NewManagerWithRateLimit(nil, logger, cfg.RateLimitPerSecond), nil
	case "openai":
		apiKey := os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return NewManagerWithRateLimit(nil, logger, cfg.RateLimitPerSecond), nil
		}
		return NewManagerWithRateLimit(NewOpenAIProvider(apiKey, cfg.Model), logger, cfg.RateLimitPerSecond), nil
	case "gemini":
		apiKey := os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return NewManagerWithRateLimit(nil, logger, cfg.RateLimitPerSecond), nil
		}
		provider, err := NewGeminiProvider(ctx, apiKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return NewManagerWithRateLimit(provider, logger, cfg.RateLimitPerSecond), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
