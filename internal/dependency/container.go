// Package dependency wires core toolcalc services using go.uber.org/dig.
package dependency

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/crystaldolphin/toolcalc/internal/agent"
	"github.com/crystaldolphin/toolcalc/internal/config"
	"github.com/crystaldolphin/toolcalc/internal/prompts"
	"github.com/crystaldolphin/toolcalc/internal/providers"
	"github.com/crystaldolphin/toolcalc/internal/schema"
	"github.com/crystaldolphin/toolcalc/internal/tools"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	provider schema.LLMProvider
	factory  *agent.AgentFactory
	catalog  *prompts.Catalog
}

func (c *Container) Provider() schema.LLMProvider { return c.provider }
func (c *Container) Factory() *agent.AgentFactory { return c.factory }
func (c *Container) Catalog() *prompts.Catalog    { return c.catalog }

type options struct {
	provider schema.LLMProvider
}

// Option customises how the container is built.
type Option func(*options)

// WithProvider uses p instead of building the configured model endpoint.
func WithProvider(p schema.LLMProvider) Option {
	return func(o *options) { o.provider = p }
}

// New builds and wires all core services from cfg.
func New(cfg *config.Config, opts ...Option) (*Container, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var providerCtor any = newProvider
	if o.provider != nil {
		providerCtor = func() schema.LLMProvider { return o.provider }
	}

	d := dig.New()

	if err := d.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := d.Provide(providerCtor); err != nil {
		return nil, err
	}
	if err := d.Provide(newCatalog); err != nil {
		return nil, err
	}
	if err := d.Provide(tools.NewBuiltinRegistry); err != nil {
		return nil, err
	}
	if err := d.Provide(newAgentFactory); err != nil {
		return nil, err
	}

	var result *Container
	err := d.Invoke(func(
		provider schema.LLMProvider,
		factory *agent.AgentFactory,
		catalog *prompts.Catalog,
	) {
		result = &Container{
			provider: provider,
			factory:  factory,
			catalog:  catalog,
		}
	})
	return result, err
}

func newProvider(cfg *config.Config) (schema.LLMProvider, error) {
	spec := cfg.ProviderSpec()
	params := cfg.ProviderParams()

	if params.APIKey == "" && !spec.IsLocal {
		hint := config.ConfigPath()
		if spec.EnvKey != "" {
			hint = spec.EnvKey + " or " + hint
		}
		return nil, fmt.Errorf("no API key configured for provider %s (model %q): set %s", spec.Name, cfg.Provider.Model, hint)
	}
	if params.ProviderName == "" {
		params.ProviderName = spec.Name
	}
	return providers.New(params), nil
}

func newCatalog(cfg *config.Config) (*prompts.Catalog, error) {
	return prompts.Load(cfg.PromptsFile())
}

func newAgentFactory(
	cfg *config.Config,
	p schema.LLMProvider,
	reg *tools.Registry,
	catalog *prompts.Catalog,
) *agent.AgentFactory {
	return agent.NewFactory(p, cfg.AgentSettings(), reg, catalog)
}
