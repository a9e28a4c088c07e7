package scenario

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/scenario.schema.json
var schemaJSON []byte

const schemaURL = "scenario.schema.json"

var (
	compiled    *jsonschema.Schema
	compileOnce sync.Once
	compileErr  error
)

func compileSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal scenario schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add scenario schema resource: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile scenario schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// Schema returns the embedded JSON schema document.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

// validateJSON checks a JSON document against the scenario schema.
func validateJSON(data []byte) error {
	sch, err := compileSchema()
	if err != nil {
		return err
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return sch.Validate(v)
}

// toJSON converts a decoded YAML value into JSON so the schema sees the same
// number and object model as a JSON scenario.
func toJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}
