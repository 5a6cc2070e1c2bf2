package ai

import (
	"encoding/json"
	"fmt"

	"github.com/gsoc2/ai/pkg/schema"
)

// Shape identifies which output strategy a streamObject call is bound to.
type Shape string

const (
	ShapeObject   Shape = "object"
	ShapeArray    Shape = "array"
	ShapeNoSchema Shape = "no-schema"
)

// outputStrategy is a set of pure operations bound to a schema/shape pair:
// what JSON Schema to send to the model, how to derive a publishable
// partial value from a repaired-parse snapshot, and how to produce the
// validated terminal result from the complete text. One concrete strategy
// exists per shape; see ObjectStrategy/ArrayStrategy/NoSchemaStrategy.
type outputStrategy interface {
	shape() Shape

	// responseSchema is the JSON Schema handed to the mode adapter to send
	// to the model. Returns nil for the no-schema shape.
	responseSchema() map[string]interface{}

	// partial derives the value to publish on partialObjectStream/
	// fullStream from a freshly repaired-parse snapshot. ok is false when
	// there is nothing publishable yet.
	partial(parsed interface{}) (value interface{}, ok bool)

	// newElements returns array elements that just became complete per the
	// look-ahead rule (elements at [publishedCount, len-2] in the current
	// snapshot), each individually validated. A validation failure for an
	// element is collected, not raised — the engine only surfaces it as a
	// terminal error at finish time. Always (nil, nil) for non-array shapes.
	newElements(parsed interface{}, publishedCount int) (elements []interface{}, validationErrs []error)

	// finalize validates and produces the terminal result from the
	// complete accumulated text.
	finalize(text string) (interface{}, error)
}

// NewOutputStrategy builds the strategy for the given shape. schemaDef is
// required for object and array shapes and ignored for no-schema.
func NewOutputStrategy(shape Shape, schemaDef schema.Schema) (outputStrategy, error) {
	switch shape {
	case ShapeObject:
		if schemaDef == nil {
			return nil, &InvalidArgumentError{Message: "schema is required for object shape"}
		}
		return &objectStrategy{def: schemaDef}, nil
	case ShapeArray:
		if schemaDef == nil {
			return nil, &InvalidArgumentError{Message: "element schema is required for array shape"}
		}
		return &arrayStrategy{elementDef: schemaDef}, nil
	case ShapeNoSchema:
		return &noSchemaStrategy{}, nil
	default:
		return nil, &InvalidArgumentError{Message: fmt.Sprintf("unknown shape %q", shape)}
	}
}

// --- object ---

type objectStrategy struct {
	def schema.Schema
}

func (s *objectStrategy) shape() Shape { return ShapeObject }

func (s *objectStrategy) responseSchema() map[string]interface{} {
	return s.def.Validator().JSONSchema()
}

func (s *objectStrategy) partial(parsed interface{}) (interface{}, bool) {
	if parsed == nil {
		return nil, false
	}
	return parsed, true
}

func (s *objectStrategy) newElements(interface{}, int) ([]interface{}, []error) {
	return nil, nil
}

func (s *objectStrategy) finalize(text string) (interface{}, error) {
	var value interface{}
	if text == "" || json.Unmarshal([]byte(text), &value) != nil {
		return nil, &NoObjectGeneratedError{Message: "response did not contain a parseable object", Text: text}
	}
	if value == nil {
		return nil, &NoObjectGeneratedError{Message: "root value is absent", Text: text}
	}
	if err := s.def.Validator().Validate(value); err != nil {
		return nil, &NoObjectGeneratedError{
			Message: "object failed schema validation",
			Cause:   &TypeValidationError{ElementIndex: -1, Value: value, Cause: err},
			Text:    text,
		}
	}
	return value, nil
}

// --- array ---

type arrayStrategy struct {
	elementDef schema.Schema
}

func (s *arrayStrategy) shape() Shape { return ShapeArray }

func (s *arrayStrategy) responseSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"elements": map[string]interface{}{
				"type":  "array",
				"items": s.elementDef.Validator().JSONSchema(),
			},
		},
		"required":             []string{"elements"},
		"additionalProperties": false,
	}
}

// elementsOf extracts the `elements` array from a repaired-parse snapshot,
// returning nil, false when it isn't present yet.
func (s *arrayStrategy) elementsOf(parsed interface{}) ([]interface{}, bool) {
	m, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, false
	}
	elements, ok := m["elements"].([]interface{})
	if !ok {
		return nil, false
	}
	return elements, true
}

func (s *arrayStrategy) partial(parsed interface{}) (interface{}, bool) {
	return s.elementsOf(parsed)
}

// newElements implements the look-ahead completion rule: an element at
// index i is complete once an element at index i+1 exists in the current
// snapshot, since that can only be true if i was closed by a following ","
// or "]". The element at len-1 is never published here — only finalize
// publishes it, once the stream is known to be complete.
func (s *arrayStrategy) newElements(parsed interface{}, publishedCount int) ([]interface{}, []error) {
	elements, ok := s.elementsOf(parsed)
	if !ok || len(elements) == 0 {
		return nil, nil
	}

	completeUpTo := len(elements) - 1 // exclusive upper bound: indices < len-1 are complete
	if completeUpTo <= publishedCount {
		return nil, nil
	}

	var fresh []interface{}
	var errs []error
	validator := s.elementDef.Validator()
	for i := publishedCount; i < completeUpTo; i++ {
		elem := elements[i]
		if err := validator.Validate(elem); err != nil {
			errs = append(errs, &TypeValidationError{ElementIndex: i, Value: elem, Cause: err})
			continue
		}
		fresh = append(fresh, elem)
	}
	return fresh, errs
}

func (s *arrayStrategy) finalize(text string) (interface{}, error) {
	var root struct {
		Elements []interface{} `json:"elements"`
	}
	if text == "" || json.Unmarshal([]byte(text), &root) != nil {
		return nil, &NoObjectGeneratedError{Message: "response did not contain a parseable elements array", Text: text}
	}

	validator := s.elementDef.Validator()
	for i, elem := range root.Elements {
		if err := validator.Validate(elem); err != nil {
			return nil, &NoObjectGeneratedError{
				Message: fmt.Sprintf("element %d failed schema validation", i),
				Cause:   &TypeValidationError{ElementIndex: i, Value: elem, Cause: err},
				Text:    text,
			}
		}
	}
	return root.Elements, nil
}

// --- no-schema ---

type noSchemaStrategy struct{}

func (s *noSchemaStrategy) shape() Shape                          { return ShapeNoSchema }
func (s *noSchemaStrategy) responseSchema() map[string]interface{} { return nil }

func (s *noSchemaStrategy) partial(parsed interface{}) (interface{}, bool) {
	return parsed, parsed != nil
}

func (s *noSchemaStrategy) newElements(interface{}, int) ([]interface{}, []error) {
	return nil, nil
}

func (s *noSchemaStrategy) finalize(text string) (interface{}, error) {
	var value interface{}
	if text == "" || json.Unmarshal([]byte(text), &value) != nil {
		return nil, &NoObjectGeneratedError{Message: "response did not contain parseable JSON", Text: text}
	}
	return value, nil
}
