// Copyright (c) Microsoft. All rights reserved.

package agentloop

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// generateSchemaFromType uses reflection to produce a JSON Schema for a struct.
func generateSchemaFromType(v any) json.RawMessage {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	schema := schemaForType(t)
	b, _ := json.Marshal(schema)
	return b
}

func schemaForType(t reflect.Type) map[string]any {
	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return map[string]any{"type": "integer"}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Slice, reflect.Array:
		return map[string]any{
			"type":  "array",
			"items": schemaForType(t.Elem()),
		}
	case reflect.Ptr:
		return schemaForType(t.Elem())
	case reflect.Struct:
		return schemaForStruct(t)
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return map[string]any{
				"type":                 "object",
				"additionalProperties": schemaForType(t.Elem()),
			}
		}
		return map[string]any{"type": "object"}
	default:
		return map[string]any{"type": "string"}
	}
}

func schemaForStruct(t reflect.Type) map[string]any {
	properties := make(map[string]any)
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		// Determine JSON field name
		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := field.Name
		if jsonTag != "" {
			parts := strings.SplitN(jsonTag, ",", 2)
			if parts[0] != "" {
				name = parts[0]
			}
		}

		prop := schemaForType(field.Type)

		// Parse jsonschema tag
		jsTag := field.Tag.Get("jsonschema")
		if jsTag != "" {
			for _, part := range strings.Split(jsTag, ",") {
				kv := strings.SplitN(part, "=", 2)
				key := strings.TrimSpace(kv[0])
				val := ""
				if len(kv) == 2 {
					val = strings.TrimSpace(kv[1])
				}
				switch key {
				case "description":
					prop["description"] = val
				case "required":
					required = append(required, name)
				case "enum":
					enumVals := strings.Split(val, "|")
					anyVals := make([]any, len(enumVals))
					for j, ev := range enumVals {
						anyVals[j] = strings.TrimSpace(ev)
					}
					prop["enum"] = anyVals
				}
			}
		}

		properties[name] = prop
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// SchemaValidator returns a [Validator] that checks arguments against a raw
// JSON Schema and passes them through unchanged. A nil schema declares an
// object with no properties.
//
// A schema that cannot be parsed or resolved is still sent to the model
// verbatim, but arguments are then accepted without checking.
func SchemaValidator(schema json.RawMessage) Validator {
	if len(schema) == 0 {
		schema = json.RawMessage(`{"type":"object","properties":{}}`)
	}
	v := &schemaValidator{raw: schema}

	var parsed jsonschema.Schema
	if err := json.Unmarshal(schema, &parsed); err != nil {
		slog.Warn("tool schema is not valid JSON Schema, arguments will not be checked", "error", err)
		return v
	}
	resolved, err := parsed.Resolve(nil)
	if err != nil {
		slog.Warn("tool schema cannot be resolved, arguments will not be checked", "error", err)
		return v
	}
	v.resolved = resolved
	return v
}

type schemaValidator struct {
	raw      json.RawMessage
	resolved *jsonschema.Resolved
}

func (v *schemaValidator) Schema() json.RawMessage { return v.raw }

func (v *schemaValidator) Validate(raw any) (any, error) {
	if v.resolved != nil {
		if err := v.resolved.Validate(raw); err != nil {
			return nil, fmt.Errorf("arguments: %w", err)
		}
	}
	return raw, nil
}

// TypedValidator returns a [Validator] whose schema is generated from T and
// whose refined value is raw decoded into a T.
func TypedValidator[T any]() Validator {
	return &typedValidator[T]{schema: SchemaValidator(GenerateSchema[T]())}
}

type typedValidator[T any] struct {
	schema Validator
}

func (v *typedValidator[T]) Schema() json.RawMessage { return v.schema.Schema() }

func (v *typedValidator[T]) Validate(raw any) (any, error) {
	if _, err := v.schema.Validate(raw); err != nil {
		return nil, err
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
