package schema

type AgentSettings struct {
	Model            string
	MaxIter          int
	Temperature      float64
	MaxTokens        int
	MaxParallelTools int // 0 = unlimited
}

func NewAgentSettings(model string, maxIter int, temperature float64, maxTokens int) AgentSettings {
	return AgentSettings{
		Model:       model,
		MaxIter:     maxIter,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// WithParallelTools returns a copy of s with the tool-batch parallelism limit set.
func (s AgentSettings) WithParallelTools(n int) AgentSettings {
	s.MaxParallelTools = n
	return s
}
