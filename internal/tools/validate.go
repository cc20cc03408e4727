package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// ParamType is a JSON Schema primitive type.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
)

// Property describes one named parameter.
type Property struct {
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
}

// ParameterSchema is the object schema of a tool's arguments.
type ParameterSchema struct {
	Properties map[string]Property
	Required   []string
}

// JSON renders the schema in JSON Schema form.
func (p ParameterSchema) JSON() json.RawMessage {
	props := p.Properties
	if props == nil {
		props = map[string]Property{}
	}
	required := p.Required
	if required == nil {
		required = []string{}
	}
	data, _ := json.Marshal(map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	})
	return data
}

// Validate checks args against the schema and returns the accepted
// arguments. Undeclared keys and null optional values are dropped.
// The returned error is a *ValidationError with Tool left empty.
func (p ParameterSchema) Validate(args map[string]any) (map[string]any, error) {
	var problems []FieldError
	out := make(map[string]any, len(p.Properties))

	for _, name := range p.Required {
		if v, ok := args[name]; !ok || v == nil {
			problems = append(problems, FieldError{Field: name, Problem: "required field missing"})
		}
	}

	for name, prop := range p.Properties {
		v, ok := args[name]
		if !ok || v == nil {
			continue
		}
		if !matchesType(v, prop.Type) {
			problems = append(problems, FieldError{
				Field:   name,
				Problem: fmt.Sprintf("expected %s, got %s", prop.Type, describe(v)),
			})
			continue
		}
		out[name] = v
	}

	if len(problems) > 0 {
		sort.Slice(problems, func(i, j int) bool { return problems[i].Field < problems[j].Field })
		return nil, &ValidationError{Fields: problems}
	}
	return out, nil
}

func matchesType(v any, t ParamType) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeNumber:
		_, ok := toFloat(v)
		return ok
	case TypeInteger:
		f, ok := toFloat(v)
		return ok && f == math.Trunc(f) && !math.IsInf(f, 0)
	}
	return false
}

func describe(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

// toFloat converts any Go or JSON numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// decodeArgs decodes validated arguments into a struct with mapstructure tags.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}
