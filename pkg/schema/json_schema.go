package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ToJSONSchema reflects a struct into an inline JSON schema.
// jsonschema struct tags supply titles, descriptions, defaults and enums.
func ToJSONSchema[T any](t T) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
