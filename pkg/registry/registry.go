// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// FindByTaskType returns the activity registered for a Zeebe task type.
func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, error) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], nil
		}
	}
	return nil, fmt.Errorf("activity not registered for task type %q", taskType)
}

// ValidateInput checks job variables against the activity's input schema.
func (a *Activity) ValidateInput(data map[string]interface{}) error {
	return validateAgainst(a.InputSchema, data)
}

// ValidateOutput checks completion variables against the activity's output schema.
func (a *Activity) ValidateOutput(data map[string]interface{}) error {
	return validateAgainst(a.OutputSchema, data)
}

func validateAgainst(schema, data map[string]interface{}) error {
	if len(schema) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("schema validation failed: %v", errs)
	}

	return nil
}
