package grading

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// resultSchema is the JSON Schema the offline grader's output must satisfy
// before it is accepted. The remote backend is trusted (its payload is
// normalized, not validated); a raw LLM is not.
var resultSchema = map[string]any{
	"type":     "object",
	"required": []any{"score"},
	"properties": map[string]any{
		"score":               map[string]any{"type": "number", "minimum": 0, "maximum": 100},
		"grade":               map[string]any{"type": "string", "enum": []any{"S", "A", "B", "C", "D", "F"}},
		"summary_interviewer": map[string]any{"type": "string"},
		"summary_coach":       map[string]any{"type": "string"},
		"strengths":           map[string]any{"type": "array"},
		"gaps":                map[string]any{"type": "array"},
		"adds":                map[string]any{"type": "array"},
		"pitfalls":            map[string]any{"type": "array"},
		"next":                map[string]any{"type": "array"},
		"tips":                map[string]any{"type": "array"},
		"keywords":            map[string]any{"type": "array"},
		"follow_up_questions": map[string]any{"type": "array"},
		"category":            map[string]any{"type": "string"},
		"polished":            map[string]any{"type": "string"},
		"chart":               map[string]any{"type": "object"},
	},
}

var (
	compiledSchema     *jsonschema.Schema
	compileSchemaOnce  sync.Once
	compileSchemaError error
)

// validateResult validates raw JSON against the grading result schema.
// Returns *ErrInvalidResult on failure.
func validateResult(raw json.RawMessage) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidResult{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compileSchemaOnce.Do(func() {
		defBytes, err := json.Marshal(resultSchema)
		if err != nil {
			compileSchemaError = fmt.Errorf("marshal schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			compileSchemaError = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://grading-result.json", def); err != nil {
			compileSchemaError = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileSchemaError = c.Compile("schema://grading-result.json")
	})
	if compileSchemaError != nil {
		return &ErrInvalidResult{Content: raw, Err: compileSchemaError}
	}

	if err := compiledSchema.Validate(parsed); err != nil {
		return &ErrInvalidResult{Content: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}
