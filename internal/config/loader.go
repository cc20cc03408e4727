package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. TOOLCALC_PROVIDER_MODEL.
const EnvPrefix = "TOOLCALC"

// ConfigPath returns the default configuration file path: ~/.toolcalc/config.yaml.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.yaml")
}

// DataDir returns the toolcalc data directory: ~/.toolcalc.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".toolcalc"
	}
	return filepath.Join(home, ".toolcalc")
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are skipped and variables that are already set are never overridden.
// With no arguments it loads ./.env and ~/.toolcalc/.env.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env", filepath.Join(DataDir(), ".env")}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the config file at path and applies TOOLCALC_* environment
// overrides. If path is empty, ConfigPath() is used.
// A missing file yields the defaults; on parse failure it logs a warning
// and returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	v := newViper()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("failed to parse config, using defaults", "path", path, "err", err)
			v = newViper()
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// newViper returns a viper instance carrying every default and bound to the
// TOOLCALC_ environment. Every key has a default so AutomaticEnv can see it.
func newViper() *viper.Viper {
	def := DefaultConfig()

	v := viper.New()
	v.SetDefault("provider.name", def.Provider.Name)
	v.SetDefault("provider.apiKey", def.Provider.APIKey)
	v.SetDefault("provider.apiBase", def.Provider.APIBase)
	v.SetDefault("provider.model", def.Provider.Model)
	v.SetDefault("provider.extraHeaders", map[string]string{})
	v.SetDefault("provider.timeoutSeconds", def.Provider.TimeoutSeconds)
	v.SetDefault("agent.mode", def.Agent.Mode)
	v.SetDefault("agent.maxTokens", def.Agent.MaxTokens)
	v.SetDefault("agent.temperature", def.Agent.Temperature)
	v.SetDefault("agent.maxSteps", def.Agent.MaxSteps)
	v.SetDefault("agent.maxParallelTools", def.Agent.MaxParallelTools)
	v.SetDefault("prompts.file", def.Prompts.File)
	v.SetDefault("log.level", def.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Save writes cfg to path as YAML.
// If path is empty, ConfigPath() is used.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
