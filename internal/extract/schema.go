package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/na2kera/ai-rent-navi/constants"
)

// BuildPropertyJSONSchema returns the JSON-Schema the model output must
// match after sanitization. No field is required; codes are range-bound so
// out-of-enumeration values can never slip through validation.
func BuildPropertyJSONSchema() map[string]any {
	nonNegInt := func() map[string]any {
		return map[string]any{"type": "integer", "minimum": 0}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"postal_code":           map[string]any{"type": "string", "pattern": `^\d{7}$`},
			"prefecture":            map[string]any{"type": "string", "minLength": 1},
			"city":                  map[string]any{"type": "string", "minLength": 1},
			"address":               map[string]any{"type": "string", "minLength": 1},
			"nearest_station":       map[string]any{"type": "string", "minLength": 1},
			"distance_from_station": nonNegInt(),
			"area":                  map[string]any{"type": "number", "minimum": 0},
			"age":                   nonNegInt(),
			"structure": map[string]any{
				"type":    "integer",
				"minimum": constants.StructureMin,
				"maximum": constants.StructureMax,
			},
			"layout": map[string]any{
				"type":    "integer",
				"minimum": constants.LayoutMin,
				"maximum": constants.LayoutMax,
			},
			"rent":           nonNegInt(),
			"management_fee": nonNegInt(),
			"total_units":    nonNegInt(),
		},
		"required": []string{},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
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
