package todo

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const dataSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "definitions": {
    "entry": {
      "oneOf": [
        {"type": "string", "minLength": 1},
        {
          "type": "object",
          "required": ["text"],
          "properties": {
            "id": {"type": "string", "minLength": 1},
            "text": {"type": "string", "minLength": 1},
            "completed": {"type": "boolean"}
          },
          "additionalProperties": false
        }
      ]
    },
    "bucket": {"type": "array", "items": {"$ref": "#/definitions/entry"}}
  },
  "additionalProperties": {
    "oneOf": [
      {"$ref": "#/definitions/bucket"},
      {"type": "object", "additionalProperties": {"$ref": "#/definitions/bucket"}}
    ]
  }
}`

// ValidationError is a schema violation at a location in the document.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("wkcal-data.schema.json", dataSchema)
	})
	return schema, schemaErr
}

// Validate checks a persisted document against the data schema and returns
// every violation found. A nil result means the document is valid.
func Validate(data []byte) []error {
	sch, err := compiledSchema()
	if err != nil {
		return []error{fmt.Errorf("compile schema: %w", err)}
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return []error{&ValidationError{Err: fmt.Errorf("invalid JSON: %w", err)}}
	}

	err = sch.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []error{err}
	}
	var errs []error
	collectSchemaErrors(&errs, ve)
	return errs
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: pointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}

// pointerToPath turns "/noteA/Monday/0" into "noteA.Monday[0]".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	path := ""
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
