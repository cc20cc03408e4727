// Package prompts holds the demo modes: named system prompts paired with the
// tool subset and generation limits the model runs under.
package prompts

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed modes.yaml
var builtinModes []byte

// DefaultMaxSteps applies to modes that do not set maxSteps.
const DefaultMaxSteps = 10

// ErrUnknownMode is matched by UnknownModeError through errors.Is.
var ErrUnknownMode = errors.New("unknown mode")

// UnknownModeError is returned by Select for an unregistered mode name.
type UnknownModeError struct {
	Mode      string
	Available []string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown mode %q (available: %v)", e.Mode, e.Available)
}

func (e *UnknownModeError) Is(target error) bool { return target == ErrUnknownMode }

// Mode is one demo configuration.
type Mode struct {
	Name         string   `yaml:"-"`
	Description  string   `yaml:"description"`
	Model        string   `yaml:"model,omitempty"` // empty = provider default
	SystemPrompt string   `yaml:"systemPrompt"`
	Tools        []string `yaml:"tools"`
	MaxSteps     int      `yaml:"maxSteps"`
	MaxTokens    int      `yaml:"maxTokens,omitempty"`   // 0 = agent default
	Temperature  *float64 `yaml:"temperature,omitempty"` // nil = agent default
	Suggestions  []string `yaml:"suggestions,omitempty"`
}

func (m Mode) clone() Mode {
	m.Tools = slices.Clone(m.Tools)
	m.Suggestions = slices.Clone(m.Suggestions)
	if m.Temperature != nil {
		t := *m.Temperature
		m.Temperature = &t
	}
	return m
}

type catalogFile struct {
	Default string          `yaml:"default"`
	Modes   map[string]Mode `yaml:"modes"`
}

// Catalog is a read-only set of modes.
type Catalog struct {
	def   string
	modes map[string]Mode
}

// Builtin returns the catalog embedded in the binary.
func Builtin() *Catalog {
	c, err := Parse(builtinModes)
	if err != nil {
		panic(fmt.Sprintf("prompts: embedded modes.yaml: %v", err))
	}
	return c
}

// Parse reads a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse modes: %w", err)
	}
	c := &Catalog{def: f.Default, modes: make(map[string]Mode, len(f.Modes))}
	for name, m := range f.Modes {
		m.Name = name
		if m.MaxSteps <= 0 {
			m.MaxSteps = DefaultMaxSteps
		}
		c.modes[name] = m
	}
	if c.def != "" {
		if _, ok := c.modes[c.def]; !ok {
			return nil, fmt.Errorf("default mode %q is not defined", c.def)
		}
	}
	return c, nil
}

// Load returns the builtin catalog overlaid with the modes in the YAML file
// at path. Modes in the file replace builtin modes of the same name. An
// empty path returns the builtin catalog.
func Load(path string) (*Catalog, error) {
	base := Builtin()
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read modes %s: %w", path, err)
	}
	extra, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	maps.Copy(base.modes, extra.modes)
	if extra.def != "" {
		base.def = extra.def
	}
	return base, nil
}

// Select returns a copy of the named mode.
func (c *Catalog) Select(name string) (Mode, error) {
	m, ok := c.modes[name]
	if !ok {
		return Mode{}, &UnknownModeError{Mode: name, Available: c.Names()}
	}
	return m.clone(), nil
}

// Default returns the name of the default mode.
func (c *Catalog) Default() string { return c.def }

// Names returns all mode names in sorted order.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.modes))
}
