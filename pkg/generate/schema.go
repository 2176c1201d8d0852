package generate

import "github.com/invopop/jsonschema"

// Schema bundles a JSON schema with the name/description the completion API
// wants alongside it.
type Schema struct {
	Name        string
	Description string
	Schema      any
}

// generateSchema reflects a Go type into a strict JSON schema.
func generateSchema[T any](name, description string) Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return Schema{
		Name:        name,
		Description: description,
		Schema:      reflector.Reflect(v),
	}
}
