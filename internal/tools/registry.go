package tools

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/crystaldolphin/toolcalc/internal/schema"
)

// ToolName is the canonical name of a built-in tool.
type ToolName string

const (
	ToolAdd        ToolName = "add"
	ToolSubtract   ToolName = "subtract"
	ToolMultiply   ToolName = "multiply"
	ToolDivide     ToolName = "divide"
	ToolCalculator ToolName = "calculator"
)

// Registry holds a set of named tools. It is not safe for concurrent
// Register calls; lookups and invocations may run concurrently once
// registration is finished.
type Registry struct {
	tools map[string]*Spec
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Spec)}
}

// Register adds a tool. Empty or duplicate names are rejected.
func (r *Registry) Register(spec *Spec) error {
	if spec == nil {
		return errors.New("tool is nil")
	}
	if spec.Name() == "" {
		return errors.New("tool name is empty")
	}
	if _, exists := r.tools[spec.Name()]; exists {
		return fmt.Errorf("tool %q already registered", spec.Name())
	}
	r.tools[spec.Name()] = spec
	return nil
}

// Lookup returns the named tool or an *UnknownToolError.
func (r *Registry) Lookup(name string) (*Spec, error) {
	if s, ok := r.tools[name]; ok {
		return s, nil
	}
	return nil, &UnknownToolError{Name: name}
}

// GetTool returns the tool with the given name, or nil.
func (r *Registry) GetTool(name ToolName) schema.Tool {
	if s, ok := r.tools[string(name)]; ok {
		return s
	}
	return nil
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.tools) }

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.tools))
}

// Subset returns a new Registry containing only the named tools.
func (r *Registry) Subset(names []string) (*Registry, error) {
	out := NewRegistry()
	for _, n := range names {
		s, err := r.Lookup(n)
		if err != nil {
			return nil, err
		}
		out.tools[n] = s
	}
	return out, nil
}

// Definitions returns all tool definitions in OpenAI function-calling
// format, sorted by name. Executors are never exposed.
func (r *Registry) Definitions() []map[string]any {
	list := make([]map[string]any, 0, len(r.tools))
	for _, name := range r.Names() {
		t := r.tools[name]
		list = append(list, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name(),
				"description": t.Description(),
				"parameters":  t.Parameters(),
			},
		})
	}
	return list
}

// Invoke looks up, validates and executes one tool call. Every failure is
// captured in the returned CallResult; Invoke never returns an error.
func (r *Registry) Invoke(ctx context.Context, call schema.ToolCallRequest) CallResult {
	res := CallResult{ID: call.Id, Name: call.Name, Arguments: call.Arguments}

	spec, err := r.Lookup(call.Name)
	if err != nil {
		res.Err = err
		return res
	}

	args, err := spec.params.Validate(call.Arguments)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Tool = spec.Name()
		}
		res.Err = err
		return res
	}

	value, err := spec.call(ctx, args)
	res.setOutcome(value, err)
	return res
}
