package properties

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	jsv "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaResource = "driver-config.json"

// JSONSchema renders the declared properties as a JSON Schema object.
func (p *Properties) JSONSchema() *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}

	for pair := p.items.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value
		schema.Properties.Set(pair.Key, &jsonschema.Schema{
			Type:        string(prop.Type),
			Title:       prop.Title,
			Description: prop.Description,
			Default:     prop.Default,
		})
		if prop.Required {
			schema.Required = append(schema.Required, pair.Key)
		}
	}
	return schema
}

// Validate checks the effective values against JSONSchema.
func (p *Properties) Validate() error {
	schemaJSON, err := json.Marshal(p.JSONSchema())
	if err != nil {
		return fmt.Errorf("failed to marshal config schema: %w", err)
	}

	compiler := jsv.NewCompiler()
	if err := compiler.AddResource(schemaResource, bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("failed to load config schema: %w", err)
	}
	schema, err := compiler.Compile(schemaResource)
	if err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}

	// Round-trip through JSON so Go numeric types compare as JSON numbers.
	valuesJSON, err := json.Marshal(p.Values())
	if err != nil {
		return fmt.Errorf("failed to marshal config values: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(valuesJSON))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("failed to decode config values: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("invalid driver config: %w", err)
	}
	return nil
}
