// Package schema contains the core contracts shared across toolcalc packages:
// tools, LLM providers, conversation messages and agent settings.
package schema

import (
	"context"
	"encoding/json"
)

// Tool is the interface all LLM-callable tools must satisfy.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema (as raw JSON bytes) for this tool's parameters.
	Parameters() json.RawMessage
	// Execute runs the tool with already-validated arguments and returns the
	// JSON-encoded outcome that is shown to the model.
	Execute(ctx context.Context, params map[string]any) (string, error)
}
