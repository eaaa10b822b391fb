// Copyright (c) Microsoft. All rights reserved.

package agentloop

import (
	"context"
	"encoding/json"
	"fmt"
)

// Validator checks the raw, decoded JSON arguments of a tool call and
// refines them into the value the handler expects.
type Validator interface {
	// Validate returns the refined value, or an error describing why raw
	// does not conform.
	Validate(raw any) (any, error)

	// Schema returns the JSON Schema object sent to the model as the
	// tool's parameters.
	Schema() json.RawMessage
}

// ToolHandler executes a tool with its validated arguments.
type ToolHandler func(ctx context.Context, args any) (any, error)

// Tool defines a callable function that can be exposed to an LLM.
type Tool interface {
	// Name returns the function name as exposed to the model.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// Parameters returns the JSON Schema describing the function's input.
	Parameters() json.RawMessage

	// Validate refines the decoded JSON arguments before invocation.
	Validate(raw any) (any, error)

	// Invoke calls the function with validated arguments.
	Invoke(ctx context.Context, args any) (any, error)
}

// ToolSpec is the wire projection of a tool: what the model is told about it.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// SpecOf projects a tool onto its [ToolSpec].
func SpecOf(t Tool) ToolSpec {
	return ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// FunctionTool is a concrete [Tool] backed by a Go function.
type FunctionTool struct {
	name        string
	description string
	validator   Validator
	fn          ToolHandler
}

// NewTool creates a [FunctionTool] from a validator and a handler. A nil
// validator accepts any arguments and declares an empty object schema.
func NewTool(name, description string, validator Validator, fn ToolHandler) *FunctionTool {
	if validator == nil {
		validator = SchemaValidator(nil)
	}
	return &FunctionTool{
		name:        name,
		description: description,
		validator:   validator,
		fn:          fn,
	}
}

// NewSchemaTool creates a [FunctionTool] from a raw JSON Schema. The
// handler receives the decoded JSON value (usually map[string]any).
func NewSchemaTool(name, description string, parameters json.RawMessage, fn ToolHandler) *FunctionTool {
	return NewTool(name, description, SchemaValidator(parameters), fn)
}

// NewTypedTool creates a [FunctionTool] that automatically generates JSON Schema
// from the Args type parameter and decodes validated arguments into it.
//
// The Args type should be a struct with json tags. Use the `jsonschema` struct tag
// for additional schema metadata:
//
//	type WeatherArgs struct {
//	    Location string `json:"location" jsonschema:"description=City name,required"`
//	    Unit     string `json:"unit"     jsonschema:"description=Temperature unit,enum=celsius|fahrenheit"`
//	}
func NewTypedTool[Args any](name, description string, fn func(ctx context.Context, args Args) (any, error)) *FunctionTool {
	wrapped := func(ctx context.Context, v any) (any, error) {
		args, ok := v.(Args)
		if !ok {
			return nil, fmt.Errorf("unexpected argument type %T", v)
		}
		return fn(ctx, args)
	}
	return NewTool(name, description, TypedValidator[Args](), wrapped)
}

func (t *FunctionTool) Name() string                { return t.name }
func (t *FunctionTool) Description() string         { return t.description }
func (t *FunctionTool) Parameters() json.RawMessage { return t.validator.Schema() }

// Validate runs the tool's validator.
func (t *FunctionTool) Validate(raw any) (any, error) {
	return t.validator.Validate(raw)
}

// Invoke calls the tool's backing function.
func (t *FunctionTool) Invoke(ctx context.Context, args any) (any, error) {
	if t.fn == nil {
		return nil, fmt.Errorf("tool %q has no handler", t.name)
	}
	return t.fn(ctx, args)
}

// GenerateSchema builds a JSON Schema from a Go struct type using reflection.
// Supports struct tags: json (field name), jsonschema (description, required, enum).
func GenerateSchema[T any]() json.RawMessage {
	var zero T
	return generateSchemaFromType(zero)
}
