package agent

import (
	"context"

	"github.com/crystaldolphin/toolcalc/internal/prompts"
	"github.com/crystaldolphin/toolcalc/internal/tools"
)

// Assistant answers questions under one mode: its system prompt, its tool
// subset and its step limit. Constructed by AgentFactory.NewAssistant.
type Assistant struct {
	LoopRunner

	mode  prompts.Mode
	tools *tools.Registry

	// OnProgress, when set, receives interim model text and tool hints.
	OnProgress func(string)
}

// Mode returns the mode the assistant runs under.
func (a *Assistant) Mode() prompts.Mode { return a.mode }

// Tools returns the tools offered to the model.
func (a *Assistant) Tools() *tools.Registry { return a.tools }

// Ask runs one question through the loop with a fresh conversation.
func (a *Assistant) Ask(ctx context.Context, question string) (Result, error) {
	return a.Run(ctx, Request{
		UserMessage:  question,
		SystemPrompt: a.mode.SystemPrompt,
		Tools:        a.tools,
		MaxSteps:     a.settings.MaxIter,
	}, a.OnProgress)
}
