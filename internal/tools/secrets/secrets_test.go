package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/finding"
)

// TestScenario2_SecretScanOnContent verifies spec §8 scenario 2 exactly.
func TestScenario2_SecretScanOnContent(t *testing.T) {
	tool := New()
	content := "api_key = \"sk-1234567890abcdef\"\nAKIAABCDEFGHIJKLMNOP\n"
	result, err := tool.Core(&contract.ExecContext{}, map[string]any{"content": content})
	require.NoError(t, err)

	findings := result["findings"].([]finding.Finding)
	require.GreaterOrEqual(t, len(findings), 2)

	var sawOpenAI, sawAWS bool
	for _, f := range findings {
		if f.Type == "openai_api_key" {
			sawOpenAI = true
			assert.Contains(t, f.Message, "****")
		}
		if f.Type == "aws_access_key" {
			sawAWS = true
		}
	}
	assert.True(t, sawOpenAI)
	assert.True(t, sawAWS)
	assert.False(t, result["clean"].(bool))
}

func TestMaskSecret_ShowsFirstAndLastFourChars(t *testing.T) {
	masked := maskSecret("sk-1234567890abcdef")
	assert.True(t, len(masked) == len("sk-1234567890abcdef"))
	assert.Equal(t, "sk-1", masked[:4])
	assert.Equal(t, "cdef", masked[len(masked)-4:])
}

func TestScanContent_Idempotent(t *testing.T) {
	content := "token = \"abcd1234efgh5678\"\n"
	first := ScanContent(content, "")
	second := ScanContent(content, "")
	assert.Equal(t, first, second)
}

func TestScanContent_SeverityThresholdFiltersLowFindings(t *testing.T) {
	content := "MY_SECRET_VALUE = \"abcdef123456\"\n"
	all := ScanContent(content, finding.Info)
	highOnly := ScanContent(content, finding.High)
	assert.GreaterOrEqual(t, len(all), len(highOnly))
}

func TestTruncateLine_CapsAt200Chars(t *testing.T) {
	long := ""
	for i := 0; i < 300; i++ {
		long += "a"
	}
	truncated := truncateLine(long)
	assert.LessOrEqual(t, len(truncated), 203)
}
