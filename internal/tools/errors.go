package tools

import (
	"errors"
	"fmt"
	"strings"
)

// ErrToolNotFound is matched by UnknownToolError through errors.Is.
var ErrToolNotFound = errors.New("tool not found")

// FieldError describes one argument that failed schema validation.
type FieldError struct {
	Field   string
	Problem string
}

func (f FieldError) String() string { return f.Field + ": " + f.Problem }

// ValidationError reports arguments that do not match a tool's parameter
// schema. Fields is sorted by field name.
type ValidationError struct {
	Tool   string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("invalid arguments for tool %q: %s", e.Tool, strings.Join(parts, "; "))
}

// FieldNames returns the names of the offending fields.
func (e *ValidationError) FieldNames() []string {
	out := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f.Field
	}
	return out
}

// UnknownToolError is returned when a requested tool is not registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool %q not found", e.Name)
}

func (e *UnknownToolError) Is(target error) bool { return target == ErrToolNotFound }

// ToolExecutionError wraps a failure raised or returned by a tool executor.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }
