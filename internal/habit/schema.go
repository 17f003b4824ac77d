package habit

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/clockin/internal/utils"
)

const schemaURL = "https://clockin.invalid/clock_in_data.schema.json"

// bundledSchema describes the data file. Unknown keys are allowed so files
// written by newer versions still load.
const bundledSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Clock-in data",
  "type": "object",
  "required": ["start_date", "tasks"],
  "properties": {
    "start_date": { "type": "string", "format": "date" },
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": { "type": "string", "minLength": 1 },
          "days": { "type": "integer" },
          "completed": { "type": "array", "items": { "type": "string" } },
          "notes": {
            "type": "object",
            "additionalProperties": { "type": "string" }
          }
        }
      }
    }
  }
}`

// BundledSchema returns the embedded data file schema.
func BundledSchema() []byte {
	return []byte(bundledSchema)
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, strings.NewReader(bundledSchema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// validateData checks raw file contents against the bundled schema and
// returns every problem found. A nil result means the data is usable.
func validateData(data []byte) []error {
	var obj any
	if err := json.Unmarshal(data, &obj); err != nil {
		return []error{&ValidationError{Err: fmt.Errorf("invalid JSON: %w", err)}}
	}

	schema, err := compiledSchema()
	if err != nil {
		return []error{&ValidationError{Err: fmt.Errorf("compile schema: %w", err)}}
	}

	err = schema.Validate(obj)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []error{err}
	}
	var problems []error
	collectSchemaErrors(&problems, ve)
	return problems
}

func collectSchemaErrors(problems *[]error, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		*problems = append(*problems, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(problems, cause)
	}
}
