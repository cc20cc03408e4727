package agent

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/crystaldolphin/toolcalc/internal/schema"
	"github.com/crystaldolphin/toolcalc/internal/shared/llmutils"
	"github.com/crystaldolphin/toolcalc/internal/tools"
)

// StepLimitNotice is the answer text when the step limit is reached before
// the model produced any text.
const StepLimitNotice = "I've reached the maximum number of tool iterations without a final answer."

// StopReason tells why a run ended.
type StopReason string

const (
	StopFinal     StopReason = "final"      // the model answered without tool calls
	StopStepLimit StopReason = "step_limit" // MaxSteps model invocations were used
)

// Request is one question for the loop.
type Request struct {
	UserMessage  string
	SystemPrompt string
	Tools        *tools.Registry // nil = no tools offered
	MaxSteps     int             // <= 0 is treated as 1
}

// Result is the outcome of a run.
type Result struct {
	RunID        string
	Text         string
	StopReason   StopReason
	Steps        int                  // model invocations made
	ToolResults  [][]tools.CallResult // one batch per tool-calling step, in request order
	ToolsUsed    []string
	Conversation schema.Messages
}

// Forced reports whether the run was cut off by the step limit.
func (r Result) Forced() bool { return r.StopReason == StopStepLimit }

// LoopRunner executes the LLM ↔ tool iteration loop.
type LoopRunner struct {
	provider schema.LLMProvider
	settings schema.AgentSettings
}

func NewLoopRunner(provider schema.LLMProvider, settings schema.AgentSettings) LoopRunner {
	return LoopRunner{provider: provider, settings: settings}
}

// Settings returns the generation settings used for every model call.
func (r *LoopRunner) Settings() schema.AgentSettings { return r.settings }

// Run answers req. Endpoint failures end the run with an *EndpointError;
// tool failures are fed back to the model and never end the run. On context
// cancellation Run returns the context error and the partial result.
func (r *LoopRunner) Run(ctx context.Context, req Request, onProgress func(string)) (Result, error) {
	maxSteps := max(req.MaxSteps, 1)
	registry := req.Tools
	if registry == nil {
		registry = tools.NewRegistry()
	}

	var defs []map[string]any
	if registry.Len() > 0 {
		defs = registry.Definitions()
	}

	res := Result{RunID: uuid.NewString()}
	conversation := schema.NewConversation(req.SystemPrompt, req.UserMessage)
	opts := schema.NewChatOptions(r.settings.Model, r.settings.MaxTokens, r.settings.Temperature)
	log := slog.With("run", res.RunID)

	for res.Steps < maxSteps {
		if err := ctx.Err(); err != nil {
			res.Conversation = conversation
			return res, err
		}

		resp, err := r.provider.Chat(ctx, conversation, defs, opts)
		res.Steps++
		if err != nil {
			res.Conversation = conversation
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			log.Error("LLM error", "step", res.Steps, "err", err)
			return res, &EndpointError{Model: llmutils.StringOrDefault(r.settings.Model, r.provider.DefaultModel()), Step: res.Steps, Err: err}
		}

		if !resp.HasToolCalls() {
			conversation.AddAssistant(resp.Content, nil, resp.ReasoningContent)
			res.Text = llmutils.StripThink(resp.Text())
			res.StopReason = StopFinal
			res.Conversation = conversation
			log.Debug("Run finished", "steps", res.Steps)
			return res, nil
		}

		calls := withCallIDs(resp.ToolCalls)

		// Progress: emit partial text + tool hint.
		if onProgress != nil {
			if clean := llmutils.StripThink(resp.Text()); clean != "" {
				onProgress(clean)
			}
			onProgress(llmutils.ToolHint(calls))
		}

		toolCalls := make([]schema.ToolCall, len(calls))
		for i, tc := range calls {
			toolCalls[i] = schema.ToolCall{ID: tc.Id, Name: tc.Name, Arguments: tc.Arguments}
		}
		conversation.AddAssistant(resp.Content, toolCalls, resp.ReasoningContent)

		batch, err := r.executeBatch(ctx, registry, calls)
		if err != nil {
			res.Conversation = conversation
			return res, err
		}
		for _, cr := range batch {
			conversation.AddToolResult(cr.ID, cr.Name, cr.Content())
			res.ToolsUsed = append(res.ToolsUsed, cr.Name)
		}
		res.ToolResults = append(res.ToolResults, batch)
	}

	res.StopReason = StopStepLimit
	res.Text = llmutils.StringOrDefault(llmutils.StripThink(conversation.LastAssistantText()), StepLimitNotice)
	res.Conversation = conversation
	log.Warn("Step limit reached", "steps", res.Steps)
	return res, nil
}

// executeBatch runs one step's tool calls concurrently and returns their
// results in request order. If ctx ends first the batch is abandoned.
func (r *LoopRunner) executeBatch(ctx context.Context, registry *tools.Registry, calls []schema.ToolCallRequest) ([]tools.CallResult, error) {
	results := make([]tools.CallResult, len(calls))

	var g errgroup.Group
	if r.settings.MaxParallelTools > 0 {
		g.SetLimit(r.settings.MaxParallelTools)
	}
	for _, tc := range calls {
		argsJSON, _ := json.Marshal(tc.Arguments)
		slog.Info("Tool call", "name", tc.Name, "args", llmutils.Truncate(string(argsJSON), 200))
	}

	// g.Go blocks at the parallelism limit, so scheduling runs off the
	// caller's goroutine and cancellation is still observed.
	done := make(chan struct{})
	go func() {
		for i, tc := range calls {
			g.Go(func() error {
				results[i] = registry.Invoke(ctx, tc)
				return nil
			})
		}
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	for _, cr := range results {
		if cr.Err != nil {
			slog.Warn("Tool failed", "name", cr.Name, "err", cr.Err)
		}
	}
	return results, nil
}

// withCallIDs returns calls with a synthetic ID for any call the model sent
// without one, so every tool result can be matched to its request.
func withCallIDs(calls []schema.ToolCallRequest) []schema.ToolCallRequest {
	out := make([]schema.ToolCallRequest, len(calls))
	for i, tc := range calls {
		if tc.Id == "" {
			tc.Id = "call_" + uuid.NewString()
		}
		if tc.Arguments == nil {
			tc.Arguments = map[string]any{}
		}
		out[i] = tc
	}
	return out
}
