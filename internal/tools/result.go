package tools

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CallResult is the outcome of one tool invocation, fed back to the model
// as a tool-result message.
type CallResult struct {
	ID        string
	Name      string
	Arguments map[string]any

	// Output is the JSON success payload, or the structured error payload
	// returned by the executor alongside its error (may be empty).
	Output json.RawMessage
	// Err is nil on success, otherwise *ValidationError, *UnknownToolError
	// or *ToolExecutionError.
	Err error
}

// OK reports whether the invocation succeeded.
func (r CallResult) OK() bool { return r.Err == nil }

// Content returns the JSON text shown to the model.
func (r CallResult) Content() string {
	if r.Err != nil && len(r.Output) == 0 {
		data, _ := json.Marshal(map[string]string{"error": r.Err.Error()})
		return string(data)
	}
	return string(r.Output)
}

// Decode unmarshals the payload into v.
func (r CallResult) Decode(v any) error {
	if len(r.Output) == 0 {
		return errors.New("empty tool output")
	}
	return json.Unmarshal(r.Output, v)
}

func (r *CallResult) setOutcome(value any, err error) {
	if value != nil {
		data, mErr := json.Marshal(value)
		if mErr != nil && err == nil {
			err = fmt.Errorf("encode result: %w", mErr)
		}
		if mErr == nil {
			r.Output = data
		}
	}
	if err != nil {
		r.Err = &ToolExecutionError{Tool: r.Name, Err: err}
		return
	}
	if len(r.Output) == 0 {
		r.Output = json.RawMessage("null")
	}
}
