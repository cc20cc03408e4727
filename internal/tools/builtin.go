package tools

// NewBuiltinRegistry returns a registry holding every built-in tool.
// Modes select their subset from it.
func NewBuiltinRegistry() *Registry {
	return NewRegistryBuilder().
		WithTool(NewAddTool()).
		WithTool(NewSubtractTool()).
		WithTool(NewMultiplyTool()).
		WithTool(NewDivideTool()).
		WithTool(NewCalculatorTool()).
		Build()
}
