package content

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/parser"
)

// ExplanationTool implements contract.Tool for code_explanation.
type ExplanationTool struct {
	parser *parser.Parser
}

func NewExplanationTool(p *parser.Parser) *ExplanationTool {
	return &ExplanationTool{parser: p}
}

func (t *ExplanationTool) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Name:         "code_explanation",
		Description:  "Explains what a piece of code does in plain language",
		Category:     "content",
		RequiredArgs: []string{"code", "language"},
		OptionalArgs: []string{"detail_level"},
		Suspendable:  true,
	}
}

func (t *ExplanationTool) RequestSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["code", "language"],
		"properties": {
			"code": {"type": "string"},
			"language": {"type": "string"},
			"detail_level": {"type": "string", "enum": ["brief", "detailed"]}
		}
	}`)
}

func (t *ExplanationTool) ResponseSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["explanation", "source"]
	}`)
}

func (t *ExplanationTool) Core(ec *contract.ExecContext, args map[string]any) (map[string]any, error) {
	code, _ := args["code"].(string)
	language, _ := args["language"].(string)
	detail, _ := args["detail_level"].(string)
	if code == "" || language == "" {
		return nil, contract.NewValidationError("code and language are required")
	}
	if detail == "" {
		detail = "brief"
	}

	view := parseView(t.parser, code, language)
	hints := structuralHints(view)

	var llm contract.LLMHelper
	if ec != nil {
		llm = ec.LLM
	}

	return contract.ExecuteWithLLMFallback(
		context.Background(),
		llm,
		func() contract.SampleRequest {
			return contract.SampleRequest{
				SystemPrompt: "You explain code clearly and concisely for another engineer.",
				Prompt:       fmt.Sprintf("Explain this %s code at %s detail.\n\nStructure:\n%s\n\nCode:\n%s", language, detail, hints, code),
			}
		},
		func(res *contract.SampleResult) (map[string]any, error) {
			return map[string]any{
				"explanation": res.Text,
				"source":      "llm",
			}, nil
		},
		func() (map[string]any, error) {
			return map[string]any{
				"explanation": localExplanation(view, language),
				"source":      "local_fallback",
			}, nil
		},
	)
}

// localExplanation produces a deterministic structural summary when no
// LLM provider is available.
func localExplanation(view parser.View, language string) string {
	if !view.Valid {
		return fmt.Sprintf("This %s snippet could not be parsed into a structural summary.", language)
	}
	summary := fmt.Sprintf("This %s code defines %d function(s) and %d class(es).", language, len(view.Functions), len(view.Classes))
	for _, fn := range view.Functions {
		summary += fmt.Sprintf(" %s(%s) performs an operation not further described without an LLM.", fn.Name, paramNames(fn.Params))
	}
	return summary
}
