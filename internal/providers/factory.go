package providers

import (
	"time"

	"github.com/crystaldolphin/toolcalc/internal/schema"
)

// Params are the raw values needed to construct any schema.LLMProvider.
// Extracted from config.Config by the caller to avoid an import cycle.
type Params struct {
	APIKey       string
	APIBase      string
	ExtraHeaders map[string]string
	DefaultModel string
	ProviderName string // registry name, e.g. "openrouter", "anthropic"
	Timeout      time.Duration
}

// New creates the schema.LLMProvider for the given params. Every registered
// provider speaks either the OpenAI chat/completions or the Anthropic
// Messages wire format, so one client covers them all.
func New(p Params) schema.LLMProvider {
	return NewOpenAIProvider(p.APIKey, p.APIBase, p.DefaultModel, p.ProviderName, p.ExtraHeaders, p.Timeout)
}
