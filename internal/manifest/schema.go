package manifest

import (
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// schemaJSON constrains the shape of a manifest. Option types are checked
// later, when the options are prompted for.
const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "version": {"type": "string"},
    "options": {
      "type": ["object", "null"],
      "additionalProperties": {
        "type": "object",
        "properties": {
          "type": {"type": "string"},
          "title": {"type": "string"},
          "required": {"type": "boolean"}
        },
        "required": ["type"]
      }
    },
    "policies": {
      "type": ["array", "null"],
      "items": {"type": "string", "minLength": 1}
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
})

// validate checks a manifest against the schema. data is either raw JSON
// bytes or a decoded YAML value.
func validate(dir, path string, data any) error {
	schema, err := compiledSchema()
	if err != nil {
		return &LoadError{Dir: dir, Path: path, Reason: "compiling manifest schema", Err: err}
	}

	var loader gojsonschema.JSONLoader
	if b, ok := data.([]byte); ok {
		loader = gojsonschema.NewBytesLoader(b)
	} else {
		loader = gojsonschema.NewGoLoader(data)
	}

	result, err := schema.Validate(loader)
	if err != nil {
		return &LoadError{Dir: dir, Path: path, Reason: "validating manifest", Err: err}
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return &LoadError{Dir: dir, Path: path, Reason: "invalid manifest: " + strings.Join(msgs, "; ")}
}
