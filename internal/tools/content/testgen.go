package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/parser"
)

// TestGenerationTool implements contract.Tool for test_generation.
type TestGenerationTool struct {
	parser *parser.Parser
}

func NewTestGenerationTool(p *parser.Parser) *TestGenerationTool {
	return &TestGenerationTool{parser: p}
}

func (t *TestGenerationTool) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Name:         "test_generation",
		Description:  "Generates a test suite for the given code, with estimated coverage metrics",
		Category:     "content",
		RequiredArgs: []string{"code", "language"},
		OptionalArgs: []string{"framework"},
		Suspendable:  true,
	}
}

func (t *TestGenerationTool) RequestSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["code", "language"],
		"properties": {
			"code": {"type": "string"},
			"language": {"type": "string"},
			"framework": {"type": "string"}
		}
	}`)
}

func (t *TestGenerationTool) ResponseSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["test_code", "metrics", "source"]
	}`)
}

func (t *TestGenerationTool) Core(ec *contract.ExecContext, args map[string]any) (map[string]any, error) {
	code, _ := args["code"].(string)
	language, _ := args["language"].(string)
	framework, _ := args["framework"].(string)
	if code == "" || language == "" {
		return nil, contract.NewValidationError("code and language are required")
	}
	if framework == "" {
		framework = defaultFramework(language)
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
				SystemPrompt: fmt.Sprintf("You write %s tests with %s. Respond with test code only.", language, framework),
				Prompt:       fmt.Sprintf("Generate tests for this code.\n\nStructure:\n%s\n\nCode:\n%s", hints, code),
			}
		},
		func(res *contract.SampleResult) (map[string]any, error) {
			return map[string]any{
				"test_code": res.Text,
				"framework": framework,
				"metrics":   estimateCoverage(view, res.Text),
				"source":    "llm",
			}, nil
		},
		func() (map[string]any, error) {
			testCode := localTestStub(view, language, framework)
			return map[string]any{
				"test_code": testCode,
				"framework": framework,
				"metrics":   estimateCoverage(view, testCode),
				"source":    "local_fallback",
			}, nil
		},
	)
}

func defaultFramework(language string) string {
	switch language {
	case "python":
		return "pytest"
	case "typescript", "javascript":
		return "jest"
	default:
		return "pytest"
	}
}

// localTestStub emits one placeholder test per discovered function when no
// LLM provider is available.
func localTestStub(view parser.View, language, framework string) string {
	if !view.Valid || len(view.Functions) == 0 {
		return commentLine(language, "no functions discovered to generate tests for") + "\n"
	}
	body := ""
	for _, fn := range view.Functions {
		switch language {
		case "python":
			body += fmt.Sprintf("def test_%s():\n    pass  # TODO: exercise %s\n\n", fn.Name, fn.Name)
		default:
			body += fmt.Sprintf("test('%s', () => {\n  // TODO: exercise %s\n});\n\n", fn.Name, fn.Name)
		}
	}
	return body
}

// estimateCoverage is a deterministic, cheap proxy for "how much of the
// discovered surface the generated tests mention by name" — the spec's
// "estimated metrics for ... test generation" without committing to an
// actual coverage tool run.
func estimateCoverage(view parser.View, testCode string) map[string]any {
	total := len(view.Functions)
	mentioned := 0
	for _, fn := range view.Functions {
		if containsWord(testCode, fn.Name) {
			mentioned++
		}
	}
	ratio := 0.0
	if total > 0 {
		ratio = float64(mentioned) / float64(total)
	}
	return map[string]any{
		"functions_total":     total,
		"functions_mentioned": mentioned,
		"estimated_coverage":  ratio,
	}
}

func containsWord(haystack, word string) bool {
	if word == "" {
		return false
	}
	return strings.Contains(haystack, word)
}
