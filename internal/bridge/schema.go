package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const historyRecordSchemaURL = "schema://history-record.json"

// historyRecordSchema mirrors session.HistoryRecord. Extra properties are
// allowed so older UIs can add fields.
var historyRecordSchema = map[string]any{
	"type": "object",
	"required": []any{
		"session_id", "started_at", "ended_at", "mode", "version",
		"question_order", "results", "summary",
	},
	"properties": map[string]any{
		"session_id": map[string]any{"type": "string", "minLength": 1},
		"started_at": map[string]any{"type": "string"},
		"ended_at":   map[string]any{"type": "string"},
		"mode":       map[string]any{"enum": []any{"practice", "exam"}},
		"version":    map[string]any{"type": "string"},
		"question_order": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"results": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "selected", "correct", "confidence", "reviewed"},
				"properties": map[string]any{
					"id":         map[string]any{"type": "string"},
					"selected":   map[string]any{"enum": []any{nil, "A", "B", "C", "D", "E"}},
					"correct":    map[string]any{"type": "boolean"},
					"confidence": map[string]any{"type": "integer", "minimum": 1, "maximum": 3},
					"reviewed":   map[string]any{"type": "boolean"},
				},
			},
		},
		"summary": map[string]any{
			"type":     "object",
			"required": []any{"total", "correct", "percent"},
			"properties": map[string]any{
				"total":   map[string]any{"type": "integer", "minimum": 0},
				"correct": map[string]any{"type": "integer", "minimum": 0},
				"percent": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			},
		},
	},
}

var (
	compileOnce    sync.Once
	compiledRecord *jsonschema.Schema
	compileErr     error
)

func recordSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		defBytes, err := json.Marshal(historyRecordSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
		if err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(historyRecordSchemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledRecord, compileErr = c.Compile(historyRecordSchemaURL)
	})
	return compiledRecord, compileErr
}

// ValidateRecord checks a history record before it is appended. It also
// requires len(results) == len(question_order).
func ValidateRecord(raw json.RawMessage) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return invalidPayload("record: " + err.Error())
	}

	schema, err := recordSchema()
	if err != nil {
		return fmt.Errorf("compile history schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return &Error{Code: CodeInvalidPayload, Detail: "record: " + firstLine(err.Error()), Err: err}
	}

	var counts struct {
		Order   []json.RawMessage `json:"question_order"`
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(raw, &counts); err != nil {
		return invalidPayload("record: " + err.Error())
	}
	if len(counts.Order) != len(counts.Results) {
		return invalidPayload(fmt.Sprintf("record: %d results for %d questions", len(counts.Results), len(counts.Order)))
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
