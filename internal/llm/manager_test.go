package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegue/specmcp/internal/contract"
)

type stubProvider struct {
	text string
	err  error
}

func (s *stubProvider) Name() string { return "stub" }
func (s *stubProvider) Complete(ctx context.Context, req contract.SampleRequest) (string, error) {
	return s.text, s.err
}

func TestManager_Available_FalseWithNilProvider(t *testing.T) {
	m := NewManager(nil, nil)
	assert.False(t, m.Available())
}

func TestManager_SampleLLM_NoProvider_ReturnsError(t *testing.T) {
	m := NewManager(nil, nil)
	_, err := m.SampleLLM(context.Background(), contract.SampleRequest{Prompt: "hi"})
	assert.Error(t, err)
}

func TestManager_SampleLLM_ReturnsProviderText(t *testing.T) {
	m := NewManager(&stubProvider{text: "hello"}, nil)
	res, err := m.SampleLLM(context.Background(), contract.SampleRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Text)
}

func TestExecuteWithLLMFallback_NoProviderUsesLocalFallback(t *testing.T) {
	m := NewManager(nil, nil)
	out, err := contract.ExecuteWithLLMFallback(
		context.Background(),
		m,
		func() contract.SampleRequest { return contract.SampleRequest{Prompt: "x"} },
		func(r *contract.SampleResult) (map[string]any, error) { return map[string]any{"source": "llm"}, nil },
		func() (map[string]any, error) { return map[string]any{"source": "local"}, nil },
	)
	require.NoError(t, err)
	assert.Equal(t, "local", out["source"])
}

func TestExecuteWithLLMFallback_ProviderErrorUsesLocalFallback(t *testing.T) {
	m := NewManager(&stubProvider{err: assert.AnError}, nil)
	out, err := contract.ExecuteWithLLMFallback(
		context.Background(),
		m,
		func() contract.SampleRequest { return contract.SampleRequest{Prompt: "x"} },
		func(r *contract.SampleResult) (map[string]any, error) { return map[string]any{"source": "llm"}, nil },
		func() (map[string]any, error) { return map[string]any{"source": "local"}, nil },
	)
	require.NoError(t, err)
	assert.Equal(t, "local", out["source"])
}
