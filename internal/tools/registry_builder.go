package tools

// RegistryBuilder accumulates tools during the construction phase.
// Call Build() to produce a Registry ready for use.
type RegistryBuilder struct {
	tools map[string]*Spec
}

// NewRegistryBuilder returns a fresh RegistryBuilder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{tools: make(map[string]*Spec)}
}

// WithTool adds a tool and returns the builder, enabling chaining.
// A later tool with the same name replaces an earlier one.
func (b *RegistryBuilder) WithTool(tool *Spec) *RegistryBuilder {
	b.tools[tool.Name()] = tool

	return b
}

// Build produces a Registry from the accumulated tools.
func (b *RegistryBuilder) Build() *Registry {
	tools := make(map[string]*Spec, len(b.tools))
	for k, v := range b.tools {
		tools[k] = v
	}
	return &Registry{tools: tools}
}
