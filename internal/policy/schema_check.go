package policy

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"pyglue-generator/internal/diagnostic"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "policy.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}

	return compiler.Compile(schemaURL)
})

// checkSchema validates a generic document against the embedded JSON schema.
// The document goes through a JSON round trip so YAML and TOML scalars reach
// the validator as JSON values.
func checkSchema(raw map[string]any) error {
	schema, err := compiledSchema()
	if err != nil {
		return errors.Wrap(err, "compiling embedded policy schema")
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return diagnostic.Mark(errors.Wrap(err, "policy is not representable as JSON"), diagnostic.KindPolicyValidation)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return diagnostic.Mark(errors.Wrap(err, "policy is not representable as JSON"), diagnostic.KindPolicyValidation)
	}

	if err := schema.Validate(doc); err != nil {
		return diagnostic.Mark(errors.Wrap(err, "policy does not match schema"), diagnostic.KindPolicyValidation)
	}

	return nil
}
