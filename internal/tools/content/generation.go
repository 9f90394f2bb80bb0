package content

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/parser"
)

// GenerationTool implements contract.Tool for code_generation.
type GenerationTool struct {
	parser *parser.Parser
}

func NewGenerationTool(p *parser.Parser) *GenerationTool {
	return &GenerationTool{parser: p}
}

func (t *GenerationTool) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Name:         "code_generation",
		Description:  "Generates code from a natural-language description, optionally grounded in existing context code",
		Category:     "content",
		RequiredArgs: []string{"description", "language"},
		OptionalArgs: []string{"context_code"},
		Suspendable:  true,
	}
}

func (t *GenerationTool) RequestSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["description", "language"],
		"properties": {
			"description": {"type": "string"},
			"language": {"type": "string"},
			"context_code": {"type": "string"}
		}
	}`)
}

func (t *GenerationTool) ResponseSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["code", "source"]
	}`)
}

func (t *GenerationTool) Core(ec *contract.ExecContext, args map[string]any) (map[string]any, error) {
	description, _ := args["description"].(string)
	language, _ := args["language"].(string)
	contextCode, _ := args["context_code"].(string)
	if description == "" || language == "" {
		return nil, contract.NewValidationError("description and language are required")
	}

	hints := structuralHints(parseView(t.parser, contextCode, language))

	var llm contract.LLMHelper
	if ec != nil {
		llm = ec.LLM
	}

	return contract.ExecuteWithLLMFallback(
		context.Background(),
		llm,
		func() contract.SampleRequest {
			return contract.SampleRequest{
				SystemPrompt: fmt.Sprintf("You are an expert %s developer. Respond with the code only, no markdown fences, no commentary.", language),
				Prompt:       fmt.Sprintf("Task: %s\n\nLanguage: %s\n\nRelevant existing structure:\n%s", description, language, hints),
			}
		},
		func(res *contract.SampleResult) (map[string]any, error) {
			return map[string]any{
				"code":     res.Text,
				"language": language,
				"source":   "llm",
			}, nil
		},
		func() (map[string]any, error) {
			return map[string]any{
				"code":     localStub(language, description),
				"language": language,
				"source":   "local_fallback",
			}, nil
		},
	)
}

// localStub is the deterministic fallback when no LLM provider is
// available: a skeleton carrying the description as a comment, in the
// requested language's comment syntax.
func localStub(language, description string) string {
	comment := commentLine(language, "TODO: "+description)
	switch language {
	case "python":
		return comment + "\npass\n"
	case "typescript", "javascript":
		return comment + "\n"
	case "go":
		return comment + "\n"
	default:
		return comment + "\n"
	}
}

func commentLine(language, text string) string {
	switch language {
	case "python":
		return "# " + text
	default:
		return "// " + text
	}
}
