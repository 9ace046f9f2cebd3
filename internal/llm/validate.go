package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateShape is a shape gate: it confirms the parsed record contains all
// four required top-level keys and nothing more. It never errors past this
// point — downstream display and export code still treats every leaf value
// defensively.
func ValidateShape(record map[string]any) (bool, string) {
	var missing []string
	for _, key := range RequiredTopLevelKeys {
		if _, ok := record[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return false, "missing required keys: " + strings.Join(missing, ", ")
	}
	return true, ""
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
