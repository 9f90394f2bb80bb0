package contract

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// Execute runs a Tool through the four-step lifecycle in spec §4.2:
// validate request, call the core routine, validate the response, record
// metrics. It never lets a panic escape — a recovered panic is normalized
// into a KindExecution ToolError, matching the "tools must never raise
// across the orchestrator boundary" propagation policy of spec §7.
func Execute(t Tool, ec *ExecContext, args map[string]any) (result map[string]any, m Metrics, err error) {
	d := t.Descriptor()
	m.ToolName = d.Name
	start := time.Now()

	inputBytes, _ := json.Marshal(args)
	m.InputSize = len(inputBytes)

	defer func() {
		if r := recover(); r != nil {
			err = NewExecutionError(fmt.Sprintf("panic in tool core: %v", r), nil)
			result = nil
		}
		m.WallTime = time.Since(start)
		if err != nil {
			m.Success = false
			m.Error = err.Error()
		} else {
			m.Success = true
			outBytes, _ := json.Marshal(result)
			m.OutputSize = len(outBytes)
		}
	}()

	if lang, ok := args["language"].(string); ok && lang != "" && len(d.Languages) > 0 {
		if !containsFold(d.Languages, lang) {
			return nil, m, NewValidationError(fmt.Sprintf("unsupported language %q for tool %q", lang, d.Name))
		}
	}

	if err := validateSchema(t.RequestSchema(), args); err != nil {
		return nil, m, NewValidationError(err.Error())
	}

	result, coreErr := t.Core(ec, args)
	if coreErr != nil {
		return nil, m, normalizeError(coreErr)
	}

	if err := validateSchema(t.ResponseSchema(), result); err != nil {
		return nil, m, NewExecutionError("response failed schema validation", err)
	}

	return result, m, nil
}

func normalizeError(err error) error {
	if _, ok := err.(*ToolError); ok {
		return err
	}
	return NewExecutionError(err.Error(), err)
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if equalFold(item, v) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// validateSchema validates v against a JSON Schema document. A nil schema
// skips validation entirely.
func validateSchema(schema json.RawMessage, v map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewBytesLoader(schema)
	docBytes, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling value for schema validation: %w", err)
	}
	docLoader := gojsonschema.NewBytesLoader(docBytes)

	res, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("schema violations: %v", msgs)
	}
	return nil
}
