package schema

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator validates data against a schema
type Validator interface {
	// Validate validates data against the schema
	// Returns an error if validation fails
	Validate(data interface{}) error

	// JSONSchema returns the JSON Schema representation of this validator
	// This is used when sending schemas to AI providers
	JSONSchema() map[string]interface{}
}

// Schema represents a validation schema
// Can be implemented as JSON Schema or Go struct-based schema
type Schema interface {
	// Validator returns the validator for this schema
	Validator() Validator
}

// JSONSchemaValidator validates using JSON Schema, compiled with
// santhosh-tekuri/jsonschema.
type JSONSchemaValidator struct {
	schema   map[string]interface{}
	compiled *jsonschema.Schema
	compErr  error
}

// NewJSONSchema creates a new JSON Schema validator. The schema map is
// compiled eagerly so a malformed schema fails at construction time rather
// than on the first Validate call.
func NewJSONSchema(schema map[string]interface{}) *JSONSchemaValidator {
	v := &JSONSchemaValidator{schema: schema}
	v.compiled, v.compErr = compileSchema(schema)
	return v
}

func compileSchema(schemaMap map[string]interface{}) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	const resourceURL = "schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceURL, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// Validate validates data against the JSON Schema. data is round-tripped
// through JSON so Go values decoded from a partial-JSON parse (maps,
// slices, float64 numbers) validate the same way a literal JSON document
// would.
func (v *JSONSchemaValidator) Validate(data interface{}) error {
	if v.compErr != nil {
		return fmt.Errorf("invalid schema: %w", v.compErr)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	var inst interface{}
	if err := json.Unmarshal(raw, &inst); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}

	if err := v.compiled.Validate(inst); err != nil {
		return err
	}
	return nil
}

// JSONSchema returns the JSON Schema
func (v *JSONSchemaValidator) JSONSchema() map[string]interface{} {
	return v.schema
}

// StructValidator validates by reflecting a JSON Schema from a Go struct
// type and delegating to a JSONSchemaValidator.
type StructValidator struct {
	targetType reflect.Type
	delegate   *JSONSchemaValidator
}

// NewStructSchema creates a new struct-based schema validator.
func NewStructSchema(targetType reflect.Type) *StructValidator {
	v := &StructValidator{targetType: targetType}
	v.delegate = NewJSONSchema(reflectStructJSONSchema(targetType))
	return v
}

// Validate validates data against the struct-derived schema.
func (v *StructValidator) Validate(data interface{}) error {
	return v.delegate.Validate(data)
}

// JSONSchema returns the JSON Schema generated from the struct type.
func (v *StructValidator) JSONSchema() map[string]interface{} {
	return v.delegate.JSONSchema()
}

// SimpleJSONSchema is a simple implementation of Schema
type SimpleJSONSchema struct {
	validator *JSONSchemaValidator
}

// NewSimpleJSONSchema creates a simple JSON Schema
func NewSimpleJSONSchema(schema map[string]interface{}) *SimpleJSONSchema {
	return &SimpleJSONSchema{
		validator: NewJSONSchema(schema),
	}
}

// Validator returns the validator
func (s *SimpleJSONSchema) Validator() Validator {
	return s.validator
}

// SimpleStructSchema is a simple implementation of Schema using structs
type SimpleStructSchema struct {
	validator *StructValidator
}

// NewSimpleStructSchema creates a simple struct schema
func NewSimpleStructSchema(targetType reflect.Type) *SimpleStructSchema {
	return &SimpleStructSchema{
		validator: NewStructSchema(targetType),
	}
}

// Validator returns the validator
func (s *SimpleStructSchema) Validator() Validator {
	return s.validator
}
