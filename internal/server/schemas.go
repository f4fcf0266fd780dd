package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/aquaguard/hmpi-service/internal/hmpi"
)

// calcSingleSchema constrains one calculation request: a sample id plus
// flat optional per-metal concentrations, each a non-negative number in
// mg/L. Unknown fields are rejected.
var calcSingleSchema = map[string]any{
	"type":                 "object",
	"required":             []any{"sample_id"},
	"properties":           calcSingleProperties(),
	"additionalProperties": false,
}

func calcSingleProperties() map[string]any {
	props := map[string]any{
		"sample_id": map[string]any{"type": "string"},
	}
	for _, metal := range hmpi.SupportedMetals() {
		props[string(metal)] = map[string]any{"type": "number", "minimum": 0}
	}
	return props
}

var calcBatchSchema = map[string]any{
	"type":     "object",
	"required": []any{"samples"},
	"properties": map[string]any{
		"samples": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    calcSingleSchema,
		},
	},
	"additionalProperties": false,
}

// validateJSONAgainstSchema validates "data" against "schemaMap".
func validateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
