package content

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/parser"
)

// DocumentationTool implements contract.Tool for code_documentation.
type DocumentationTool struct {
	parser *parser.Parser
}

func NewDocumentationTool(p *parser.Parser) *DocumentationTool {
	return &DocumentationTool{parser: p}
}

func (t *DocumentationTool) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Name:         "code_documentation",
		Description:  "Generates documentation for code in a requested output format",
		Category:     "content",
		RequiredArgs: []string{"code", "language"},
		OptionalArgs: []string{"format"},
		Suspendable:  true,
	}
}

func (t *DocumentationTool) RequestSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["code", "language"],
		"properties": {
			"code": {"type": "string"},
			"language": {"type": "string"},
			"format": {"type": "string", "enum": ["markdown", "docstring", "plain"]}
		}
	}`)
}

func (t *DocumentationTool) ResponseSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["documentation", "format", "source"]
	}`)
}

func (t *DocumentationTool) Core(ec *contract.ExecContext, args map[string]any) (map[string]any, error) {
	code, _ := args["code"].(string)
	language, _ := args["language"].(string)
	format, _ := args["format"].(string)
	if code == "" || language == "" {
		return nil, contract.NewValidationError("code and language are required")
	}
	if format == "" {
		format = "markdown"
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
				SystemPrompt: fmt.Sprintf("You write %s documentation in %s format.", language, format),
				Prompt:       fmt.Sprintf("Document this code.\n\nStructure:\n%s\n\nCode:\n%s", hints, code),
			}
		},
		func(res *contract.SampleResult) (map[string]any, error) {
			return map[string]any{
				"documentation": convertFormat(res.Text, format),
				"format":        format,
				"source":        "llm",
			}, nil
		},
		func() (map[string]any, error) {
			return map[string]any{
				"documentation": convertFormat(localDocumentation(view), format),
				"format":        format,
				"source":        "local_fallback",
			}, nil
		},
	)
}

// localDocumentation produces a deterministic per-symbol listing when no
// LLM provider is available.
func localDocumentation(view parser.View) string {
	if !view.Valid {
		return "No structural information available."
	}
	doc := ""
	for _, fn := range view.Functions {
		doc += fmt.Sprintf("%s(%s): undocumented\n", fn.Name, paramNames(fn.Params))
	}
	for _, cls := range view.Classes {
		doc += fmt.Sprintf("%s: undocumented class\n", cls.Name)
		for _, m := range cls.Methods {
			doc += fmt.Sprintf("  %s(%s): undocumented\n", m.Name, paramNames(m.Params))
		}
	}
	if doc == "" {
		return "No documentable symbols found."
	}
	return doc
}

// convertFormat performs the spec §4.11 "format conversion for
// documentation" step: markdown prepends a "## Documentation" heading,
// docstring wraps the whole body in triple quotes, plain passes through
// unchanged.
func convertFormat(body, format string) string {
	switch format {
	case "markdown":
		return "## Documentation\n\n" + body
	case "docstring":
		return `"""` + "\n" + body + `"""`
	default:
		return body
	}
}
