package impact

import (
	"context"
	"encoding/json"

	"github.com/collegue/specmcp/internal/contract"
)

// Insight is one LLM-sourced observation (spec §4.9).
type Insight struct {
	Category   string  `json:"category"` // semantic, architectural, business, or suggestion
	Insight    string  `json:"insight"`
	Confidence float64 `json:"confidence"`
}

type deepResult struct {
	SemanticSummary string
	Insights        []Insight
}

// runDeepAnalysis calls the LLM with a structured prompt summarizing the
// change's impact and expects {semantic_summary, insights[]}; on any error
// it silently falls back (ok=false) to the heuristic result already built.
func runDeepAnalysis(ctx context.Context, llm contract.LLMHelper, intent string, impacted []ImpactedFile, risks []Risk) (deepResult, bool) {
	if llm == nil || !llm.Available() {
		return deepResult{}, false
	}

	prompt, err := buildDeepPrompt(intent, impacted, risks)
	if err != nil {
		return deepResult{}, false
	}

	res, err := llm.SampleLLM(ctx, contract.SampleRequest{
		SystemPrompt: "You are a senior engineer assessing the impact of a code change. Respond with JSON only.",
		Prompt:       prompt,
		ResultSchema: map[string]any{
			"semantic_summary": "string",
			"insights":         "array",
		},
	})
	if err != nil || res == nil {
		return deepResult{}, false
	}

	parsed := res.Structured
	if parsed == nil {
		parsed, err = contract.ParseStructured(res.Text)
		if err != nil {
			return deepResult{}, false
		}
	}

	summary, _ := parsed["semantic_summary"].(string)
	insights := decodeInsights(parsed["insights"])
	return deepResult{SemanticSummary: summary, Insights: insights}, true
}

func buildDeepPrompt(intent string, impacted []ImpactedFile, risks []Risk) (string, error) {
	payload := map[string]any{
		"intent":         intent,
		"impacted_files": impacted,
		"risks":          risks,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeInsights(raw any) []Insight {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Insight, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		category, _ := m["category"].(string)
		text, _ := m["insight"].(string)
		confidence, _ := m["confidence"].(float64)
		out = append(out, Insight{Category: category, Insight: text, Confidence: confidence})
	}
	return out
}
