package testrunner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/collegue/specmcp/internal/contract"
)

// Tool implements contract.Tool for the test runner.
type Tool struct{}

// New builds the run_tests Tool.
func New() *Tool { return &Tool{} }

func (t *Tool) Descriptor() contract.Descriptor {
	return contract.Descriptor{
		Name:         "run_tests",
		Description:  "Runs a test suite against a target path, or a sandboxed source/test pair, and parses the results",
		Category:     "testing",
		RequiredArgs: []string{"language"},
		OptionalArgs: []string{"target", "test_content", "source_content", "framework", "timeout_seconds"},
		Suspendable:  true,
	}
}

func (t *Tool) RequestSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["language"],
		"properties": {
			"language": {"type": "string"},
			"target": {"type": "string"},
			"test_content": {"type": "string"},
			"source_content": {"type": "string"},
			"framework": {"type": "string"},
			"timeout_seconds": {"type": "integer"}
		}
	}`)
}

func (t *Tool) ResponseSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["framework", "total", "passed", "failed", "success", "command"]
	}`)
}

func (t *Tool) Core(ec *contract.ExecContext, args map[string]any) (map[string]any, error) {
	language, _ := args["language"].(string)
	if language == "" {
		return nil, contract.NewValidationError("language is required")
	}

	target, _ := args["target"].(string)
	testContent, _ := args["test_content"].(string)
	sourceContent, _ := args["source_content"].(string)

	if target == "" && testContent == "" {
		return nil, contract.NewValidationError("one of target or test_content is required")
	}

	var sb *Sandbox
	runDir := target
	runTarget := target

	if testContent != "" {
		var err error
		sb, err = NewSandbox(language, sourceContent, testContent)
		if err != nil {
			return nil, contract.NewExecutionError(err.Error(), err)
		}
		defer sb.Cleanup()
		runDir = sb.Dir
		runTarget = sb.Dir
	} else {
		runDir = filepath.Dir(target)
	}

	framework := Framework(stringArg(args, "framework"))
	if framework == "" {
		framework = DetectFramework(language, runDir)
	} else if !Compatible(language, framework) {
		return nil, contract.NewValidationError("framework " + string(framework) + " is not compatible with language " + language)
	}

	timeout := ClampTimeout(intArg(args, "timeout_seconds", 30))
	inv := BuildInvocation(framework, runTarget)

	result := Run(context.Background(), inv, runDir, timeout)

	summary := parseSummary(framework, result, runDir)

	return map[string]any{
		"framework":  summary.Framework,
		"total":      summary.Total,
		"passed":     summary.Passed,
		"failed":     summary.Failed,
		"success":    summary.Success,
		"tests":      summary.Tests,
		"command":    result.Command,
		"stdout":     result.Stdout,
		"stderr":     result.Stderr,
		"timed_out":  result.TimedOut,
		"exit_code":  result.ExitCode,
	}, nil
}

func parseSummary(framework Framework, result RunResult, dir string) Summary {
	switch framework {
	case Pytest:
		report, _ := os.ReadFile(filepath.Join(dir, "report.json"))
		return ParsePytest(result.Stdout, report)
	case Unittest:
		return ParseUnittest(result.Stdout + result.Stderr)
	case Jest, Vitest:
		return ParseJestLike(framework, result.Stdout)
	case Mocha:
		return ParseMocha(result.Stdout)
	default:
		return Summary{Framework: framework}
	}
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}
