package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Executor runs a tool with validated arguments. It returns the structured
// outcome; a non-nil error marks the outcome as failed, and a non-nil value
// alongside the error is still shown to the model as the error payload.
type Executor func(ctx context.Context, args map[string]any) (any, error)

// Spec is a named, schema-described tool. It is immutable once built and
// implements schema.Tool.
type Spec struct {
	name        string
	description string
	params      ParameterSchema
	exec        Executor
	raw         json.RawMessage
}

// NewSpec builds a tool. The parameter schema is copied.
func NewSpec(name, description string, params ParameterSchema, exec Executor) *Spec {
	params = params.clone()
	return &Spec{
		name:        name,
		description: description,
		params:      params,
		exec:        exec,
		raw:         params.JSON(),
	}
}

func (s *Spec) Name() string        { return s.name }
func (s *Spec) Description() string { return s.description }

// Parameters returns the JSON Schema for this tool's parameters.
func (s *Spec) Parameters() json.RawMessage { return slices.Clone(s.raw) }

// Execute implements schema.Tool. It does not validate params; use
// Registry.Invoke for the validated path.
func (s *Spec) Execute(ctx context.Context, params map[string]any) (string, error) {
	value, err := s.call(ctx, params)
	out := CallResult{Name: s.name, Arguments: params}
	out.setOutcome(value, err)
	return out.Content(), out.Err
}

// call runs the executor, turning panics into errors.
func (s *Spec) call(ctx context.Context, args map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return s.exec(ctx, args)
}

func (p ParameterSchema) clone() ParameterSchema {
	return ParameterSchema{
		Properties: maps.Clone(p.Properties),
		Required:   slices.Clone(p.Required),
	}
}
