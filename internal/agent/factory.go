package agent

import (
	"fmt"

	"github.com/crystaldolphin/toolcalc/internal/prompts"
	"github.com/crystaldolphin/toolcalc/internal/schema"
	"github.com/crystaldolphin/toolcalc/internal/tools"
)

// AgentFactory creates per-mode Assistant instances.
// It holds construction-time dependencies; created assistants are lightweight
// objects that own only what they need for their mode.
type AgentFactory struct {
	provider schema.LLMProvider
	settings schema.AgentSettings // MaxIter > 0 overrides every mode's step limit
	registry *tools.Registry      // all tools; each mode gets a subset
	catalog  *prompts.Catalog
}

// NewFactory constructs an AgentFactory.
func NewFactory(
	provider schema.LLMProvider,
	settings schema.AgentSettings,
	registry *tools.Registry,
	catalog *prompts.Catalog,
) *AgentFactory {
	return &AgentFactory{
		provider: provider,
		settings: settings,
		registry: registry,
		catalog:  catalog,
	}
}

// Catalog returns the modes the factory can build.
func (f *AgentFactory) Catalog() *prompts.Catalog { return f.catalog }

// NewAssistant creates the Assistant for the named mode. An empty name
// selects the catalog default. Modes that name an unregistered tool are
// rejected.
func (f *AgentFactory) NewAssistant(modeName string) (*Assistant, error) {
	if modeName == "" {
		modeName = f.catalog.Default()
	}
	mode, err := f.catalog.Select(modeName)
	if err != nil {
		return nil, err
	}

	subset, err := f.registry.Subset(mode.Tools)
	if err != nil {
		return nil, fmt.Errorf("mode %s: %w", mode.Name, err)
	}

	settings := f.settings
	if mode.Model != "" {
		settings.Model = mode.Model
	}
	if mode.MaxTokens > 0 {
		settings.MaxTokens = mode.MaxTokens
	}
	if mode.Temperature != nil {
		settings.Temperature = *mode.Temperature
	}
	if f.settings.MaxIter <= 0 {
		settings.MaxIter = mode.MaxSteps
	}

	return &Assistant{
		LoopRunner: NewLoopRunner(f.provider, settings),
		mode:       mode,
		tools:      subset,
	}, nil
}
