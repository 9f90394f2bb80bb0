package impact

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/parser"
)

// Tool implements contract.Tool for impact analysis.
type Tool struct {
	parser *parser.Parser
}

// New builds the impact_analysis Tool.
func New(p *parser.Parser) *Tool {
	return &Tool{parser: p}
}

func (t *Tool) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Name:         "impact_analysis",
		Description:  "Estimates which files an intended change touches and what risks it carries",
		Category:     "analysis",
		RequiredArgs: []string{"intent", "files"},
		OptionalArgs: []string{"diff", "confidence_mode", "deep_analysis"},
		Suspendable:  true,
	}
}

func (t *Tool) RequestSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["intent", "files"],
		"properties": {
			"intent": {"type": "string"},
			"files": {"type": "array"},
			"diff": {"type": "string"},
			"confidence_mode": {"type": "string", "enum": ["conservative", "balanced", "aggressive"]},
			"deep_analysis": {"type": "boolean"}
		}
	}`)
}

func (t *Tool) ResponseSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["identifiers", "impacted_files", "risks", "search_queries", "test_commands", "followups"]
	}`)
}

func (t *Tool) Core(ec *contract.ExecContext, args map[string]any) (map[string]any, error) {
	intent, _ := args["intent"].(string)
	if intent == "" {
		return nil, contract.NewValidationError("intent is required")
	}
	files, err := decodeFiles(args["files"])
	if err != nil {
		return nil, contract.NewValidationError(err.Error())
	}
	diff, _ := args["diff"].(string)

	mode := ConfidenceMode(stringArg(args, "confidence_mode"))
	if mode == "" {
		mode = Conservative
	}

	identifiers := ExtractIdentifiers(intent)

	var fileContents []string
	fileContents = append(fileContents, intent)
	for _, f := range files {
		fileContents = append(fileContents, f.Content)
	}
	endpoints := ExtractEndpoints(fileContents...)

	impacted := FindImpactedFiles(t.parser, files, identifiers, mode)
	risks := AnalyzeRisks(intent, diff, files)

	searchQueries := BuildSearchQueries(identifiers, endpoints)
	testCommands := BuildTestCommands(impacted)
	followups := BuildFollowups(risks)

	result := map[string]any{
		"identifiers":    identifiers,
		"endpoints":      endpoints,
		"impacted_files": impacted,
		"risks":          risks,
		"search_queries": searchQueries,
		"test_commands":  testCommands,
		"followups":      followups,
	}

	if boolArg(args, "deep_analysis") && ec != nil && ec.LLM != nil {
		if deep, ok := runDeepAnalysis(context.Background(), ec.LLM, intent, impacted, risks); ok {
			result["semantic_summary"] = deep.SemanticSummary
			result["insights"] = deep.Insights
		}
	}

	return result, nil
}

func decodeFiles(raw any) ([]File, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("files must be an array of {path, content, language?}")
	}
	out := make([]File, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("each file entry must be an object")
		}
		path, _ := m["path"].(string)
		content, _ := m["content"].(string)
		language, _ := m["language"].(string)
		if path == "" {
			return nil, fmt.Errorf("each file entry requires a non-empty path")
		}
		out = append(out, File{Path: path, Content: content, Language: language})
	}
	return out, nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}
