// Package config defines the configuration schema for toolcalc and loads it
// from ~/.toolcalc/config.yaml, TOOLCALC_* environment variables and .env
// files.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/crystaldolphin/toolcalc/internal/providers"
	"github.com/crystaldolphin/toolcalc/internal/schema"
)

// ProviderConfig selects the model endpoint and holds its credentials.
type ProviderConfig struct {
	Name           string            `mapstructure:"name" yaml:"name"` // registry name; empty = detect from model
	APIKey         string            `mapstructure:"apiKey" yaml:"apiKey"`
	APIBase        string            `mapstructure:"apiBase" yaml:"apiBase,omitempty"`
	Model          string            `mapstructure:"model" yaml:"model"`
	ExtraHeaders   map[string]string `mapstructure:"extraHeaders" yaml:"extraHeaders,omitempty"`
	TimeoutSeconds int               `mapstructure:"timeoutSeconds" yaml:"timeoutSeconds"`
}

// AgentConfig holds default values for agent behaviour. Modes may override
// maxTokens and temperature.
type AgentConfig struct {
	Mode             string  `mapstructure:"mode" yaml:"mode"`
	MaxTokens        int     `mapstructure:"maxTokens" yaml:"maxTokens"`
	Temperature      float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxSteps         int     `mapstructure:"maxSteps" yaml:"maxSteps"` // 0 = per-mode limit
	MaxParallelTools int     `mapstructure:"maxParallelTools" yaml:"maxParallelTools"`
}

// PromptsConfig points at an optional user modes file.
type PromptsConfig struct {
	File string `mapstructure:"file" yaml:"file,omitempty"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Config is the root configuration object.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider" yaml:"provider"`
	Agent    AgentConfig    `mapstructure:"agent" yaml:"agent"`
	Prompts  PromptsConfig  `mapstructure:"prompts" yaml:"prompts"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderConfig{
			Model:          "gpt-4.1",
			TimeoutSeconds: 120,
		},
		Agent: AgentConfig{
			Mode:        "math-enhanced",
			MaxTokens:   4096,
			Temperature: 0.7,
		},
		Log: LogConfig{Level: "warn"},
	}
}

// ProviderSpec resolves the registry entry for the configured provider.
func (c *Config) ProviderSpec() *providers.ProviderSpec {
	return providers.Resolve(c.Provider.Name, c.Provider.Model, c.Provider.APIKey, c.Provider.APIBase)
}

// APIKey returns the configured key, or the value of the resolved
// provider's environment variable (e.g. OPENAI_API_KEY).
func (c *Config) APIKey() string {
	if c.Provider.APIKey != "" {
		return c.Provider.APIKey
	}
	if spec := c.ProviderSpec(); spec.EnvKey != "" {
		return os.Getenv(spec.EnvKey)
	}
	return ""
}

// ProviderParams extracts the values providers.New needs.
func (c *Config) ProviderParams() providers.Params {
	return providers.Params{
		APIKey:       c.APIKey(),
		APIBase:      c.Provider.APIBase,
		ExtraHeaders: c.Provider.ExtraHeaders,
		DefaultModel: c.Provider.Model,
		ProviderName: c.Provider.Name,
		Timeout:      time.Duration(c.Provider.TimeoutSeconds) * time.Second,
	}
}

// AgentSettings converts the agent section into loop settings.
func (c *Config) AgentSettings() schema.AgentSettings {
	return schema.NewAgentSettings(
		c.Provider.Model,
		c.Agent.MaxSteps,
		c.Agent.Temperature,
		c.Agent.MaxTokens,
	).WithParallelTools(c.Agent.MaxParallelTools)
}

// PromptsFile returns the modes file path with a leading ~ expanded.
func (c *Config) PromptsFile() string {
	return expandHome(c.Prompts.File)
}

func expandHome(p string) string {
	if len(p) < 2 || p[:2] != "~/" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
