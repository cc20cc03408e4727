package agent

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crystaldolphin/toolcalc/internal/schema"
	"github.com/crystaldolphin/toolcalc/internal/tools"
)

// scriptedProvider replays a fixed list of responses. Once the script is
// exhausted the last response is repeated.
type scriptedProvider struct {
	mu     sync.Mutex
	script []schema.LLMResponse
	err    error
	calls  []schema.Messages
	tools  [][]map[string]any
}

func (p *scriptedProvider) Chat(_ context.Context, msgs schema.Messages, defs []map[string]any, _ schema.ChatOptions) (schema.LLMResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, msgs.Clone())
	p.tools = append(p.tools, defs)
	if p.err != nil {
		return schema.LLMResponse{}, p.err
	}
	i := min(len(p.calls)-1, len(p.script)-1)
	return p.script[i], nil
}

func (p *scriptedProvider) DefaultModel() string { return "scripted" }

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func text(s string) schema.LLMResponse {
	return schema.LLMResponse{Content: &s, FinishReason: "stop"}
}

func toolCalls(calls ...schema.ToolCallRequest) schema.LLMResponse {
	return schema.LLMResponse{ToolCalls: calls, FinishReason: "tool_calls"}
}

func call(id, name string, args map[string]any) schema.ToolCallRequest {
	return schema.ToolCallRequest{Id: id, Name: name, Arguments: args}
}

func newRunner(p schema.LLMProvider) LoopRunner {
	return NewLoopRunner(p, schema.NewAgentSettings("", 10, 0, 1024))
}

// ─── Final answers ─────────────────────────────────────────────────────────

func TestRun_FinalAnswer(t *testing.T) {
	p := &scriptedProvider{script: []schema.LLMResponse{text("<think>easy</think>2 + 2 = 4")}}
	r := newRunner(p)

	res, err := r.Run(context.Background(), Request{
		UserMessage:  "What's 2 + 2?",
		SystemPrompt: "You are a helpful AI assistant.",
		Tools:        tools.NewBuiltinRegistry(),
		MaxSteps:     5,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "2 + 2 = 4" {
		t.Errorf("expected think block stripped, got %q", res.Text)
	}
	if res.StopReason != StopFinal || res.Forced() {
		t.Errorf("expected StopFinal, got %q", res.StopReason)
	}
	if res.Steps != 1 || len(res.ToolResults) != 0 {
		t.Errorf("expected one step and no tool results, got %d / %d", res.Steps, len(res.ToolResults))
	}
	if res.RunID == "" {
		t.Error("expected a run id")
	}
	if n := res.Conversation.Len(); n != 3 {
		t.Errorf("expected system, user, assistant; got %d messages", n)
	}
	if len(p.tools[0]) != 5 {
		t.Errorf("expected 5 tool definitions offered, got %d", len(p.tools[0]))
	}
}

func TestRun_NoToolsNoSystemPrompt(t *testing.T) {
	p := &scriptedProvider{script: []schema.LLMResponse{text("4")}}
	r := newRunner(p)

	res, err := r.Run(context.Background(), Request{UserMessage: "2+2", MaxSteps: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.tools[0] != nil {
		t.Errorf("expected no tool definitions, got %v", p.tools[0])
	}
	if first := p.calls[0].Messages[0]; first.Role != schema.RoleUser {
		t.Errorf("expected conversation to start with the user message, got %q", first.Role)
	}
	if res.Text != "4" {
		t.Errorf("unexpected text %q", res.Text)
	}
}

// ─── Tool round trip ───────────────────────────────────────────────────────

func TestRun_ToolRoundTrip(t *testing.T) {
	p := &scriptedProvider{script: []schema.LLMResponse{
		toolCalls(call("c1", "add", map[string]any{"a": 2.0, "b": 3.0})),
		text("2 + 3 = 5"),
	}}
	r := newRunner(p)

	var progress []string
	res, err := r.Run(context.Background(), Request{
		UserMessage: "What is 2+3?",
		Tools:       tools.NewBuiltinRegistry(),
		MaxSteps:    10,
	}, func(s string) { progress = append(progress, s) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Steps != 2 || res.StopReason != StopFinal || res.Text != "2 + 3 = 5" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.ToolResults) != 1 || len(res.ToolResults[0]) != 1 {
		t.Fatalf("expected one batch of one result, got %v", res.ToolResults)
	}
	cr := res.ToolResults[0][0]
	if !cr.OK() || cr.ID != "c1" {
		t.Fatalf("unexpected call result %+v", cr)
	}
	want := `{"operation":"addition","a":2,"b":3,"result":5}`
	if cr.Content() != want {
		t.Errorf("expected %s, got %s", want, cr.Content())
	}
	if !reflect.DeepEqual(res.ToolsUsed, []string{"add"}) {
		t.Errorf("unexpected tools used %v", res.ToolsUsed)
	}
	if !reflect.DeepEqual(progress, []string{"add(a=2, b=3)"}) {
		t.Errorf("unexpected progress %v", progress)
	}

	// The second model call sees user, assistant(tool call), tool result.
	second := p.calls[1].Messages
	if len(second) != 3 {
		t.Fatalf("expected 3 messages on the second call, got %d", len(second))
	}
	if second[1].Role != schema.RoleAssistant || len(second[1].ToolCalls) != 1 {
		t.Errorf("expected assistant tool-call message, got %+v", second[1])
	}
	if second[2].Role != schema.RoleTool || second[2].ToolCallID != "c1" || second[2].Text() != want {
		t.Errorf("unexpected tool message %+v", second[2])
	}
}

func TestRun_DivideByZeroIsFedBack(t *testing.T) {
	p := &scriptedProvider{script: []schema.LLMResponse{
		toolCalls(call("c1", "divide", map[string]any{"a": 1.0, "b": 0.0})),
		text("You cannot divide by zero."),
	}}
	r := newRunner(p)

	res, err := r.Run(context.Background(), Request{UserMessage: "1/0", Tools: tools.NewBuiltinRegistry(), MaxSteps: 3}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cr := res.ToolResults[0][0]
	if cr.OK() || !errors.Is(cr.Err, tools.ErrDivideByZero) {
		t.Fatalf("expected divide-by-zero outcome, got %+v", cr)
	}
	var out tools.ArithmeticResult
	if err := cr.Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Result != nil || out.Error != "Cannot divide by zero" {
		t.Errorf("unexpected payload %+v", out)
	}
}

func TestRun_UnknownToolContinues(t *testing.T) {
	p := &scriptedProvider{script: []schema.LLMResponse{
		toolCalls(call("c1", "power", map[string]any{"base": 2.0, "exp": 10.0})),
		text("I don't have a power tool."),
	}}
	r := newRunner(p)

	res, err := r.Run(context.Background(), Request{UserMessage: "2^10", Tools: tools.NewBuiltinRegistry(), MaxSteps: 5}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StopReason != StopFinal || res.Steps != 2 {
		t.Fatalf("expected the loop to continue to a final answer, got %+v", res)
	}
	var ute *tools.UnknownToolError
	if !errors.As(res.ToolResults[0][0].Err, &ute) || ute.Name != "power" {
		t.Errorf("expected UnknownToolError for power, got %v", res.ToolResults[0][0].Err)
	}
	toolMsg := p.calls[1].Messages[2]
	if toolMsg.Text() != `{"error":"tool \"power\" not found"}` {
		t.Errorf("unexpected tool message %q", toolMsg.Text())
	}
}

func TestRun_ToolOutsideSubsetIsUnknown(t *testing.T) {
	subset, err := tools.NewBuiltinRegistry().Subset([]string{"add", "subtract", "divide"})
	if err != nil {
		t.Fatal(err)
	}
	p := &scriptedProvider{script: []schema.LLMResponse{
		toolCalls(call("c1", "multiply", map[string]any{"a": 3.0, "b": 4.0})),
		text("12"),
	}}
	r := newRunner(p)

	res, err := r.Run(context.Background(), Request{UserMessage: "3*4", Tools: subset, MaxSteps: 5}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(res.ToolResults[0][0].Err, tools.ErrToolNotFound) {
		t.Errorf("expected multiply to be unavailable, got %v", res.ToolResults[0][0].Err)
	}
}

func TestRun_SyntheticCallIDs(t *testing.T) {
	p := &scriptedProvider{script: []schema.LLMResponse{
		toolCalls(call("", "add", map[string]any{"a": 1.0, "b": 1.0})),
		text("2"),
	}}
	r := newRunner(p)

	res, err := r.Run(context.Background(), Request{UserMessage: "1+1", Tools: tools.NewBuiltinRegistry(), MaxSteps: 2}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := res.ToolResults[0][0].ID
	if id == "" {
		t.Fatal("expected a synthetic call id")
	}
	if got := p.calls[1].Messages[1].ToolCalls[0].ID; got != id {
		t.Errorf("assistant call id %q does not match result id %q", got, id)
	}
}

// ─── Step limit ────────────────────────────────────────────────────────────

func TestRun_StepLimit(t *testing.T) {
	p := &scriptedProvider{script: []schema.LLMResponse{
		toolCalls(call("c", "add", map[string]any{"a": 1.0, "b": 1.0})),
	}}
	r := newRunner(p)

	res, err := r.Run(context.Background(), Request{UserMessage: "loop", Tools: tools.NewBuiltinRegistry(), MaxSteps: 3}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.callCount() != 3 || res.Steps != 3 {
		t.Errorf("expected exactly 3 model invocations, got %d (steps %d)", p.callCount(), res.Steps)
	}
	if res.StopReason != StopStepLimit || !res.Forced() {
		t.Errorf("expected StopStepLimit, got %q", res.StopReason)
	}
	if res.Text != StepLimitNotice {
		t.Errorf("expected step-limit notice, got %q", res.Text)
	}
	if len(res.ToolResults) != 3 {
		t.Errorf("expected 3 tool batches, got %d", len(res.ToolResults))
	}
}

func TestRun_StepLimitKeepsLastText(t *testing.T) {
	partial := "Adding the first pair..."
	resp := toolCalls(call("c", "add", map[string]any{"a": 1.0, "b": 1.0}))
	resp.Content = &partial
	p := &scriptedProvider{script: []schema.LLMResponse{resp}}
	r := newRunner(p)

	res, err := r.Run(context.Background(), Request{UserMessage: "loop", Tools: tools.NewBuiltinRegistry(), MaxSteps: 2}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != partial {
		t.Errorf("expected last assistant text, got %q", res.Text)
	}
}

func TestRun_NonPositiveMaxStepsMeansOne(t *testing.T) {
	for _, steps := range []int{0, -4} {
		p := &scriptedProvider{script: []schema.LLMResponse{
			toolCalls(call("c", "add", map[string]any{"a": 1.0, "b": 1.0})),
		}}
		r := newRunner(p)
		res, err := r.Run(context.Background(), Request{UserMessage: "x", Tools: tools.NewBuiltinRegistry(), MaxSteps: steps}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.callCount() != 1 || res.StopReason != StopStepLimit {
			t.Errorf("MaxSteps %d: expected one invocation and step limit, got %d / %q", steps, p.callCount(), res.StopReason)
		}
	}
}

// ─── Concurrency ───────────────────────────────────────────────────────────

// sleepyRegistry has one tool that sleeps for "ms" milliseconds, tracking
// the peak number of concurrent executions.
func sleepyRegistry(t *testing.T, peak *atomic.Int32) *tools.Registry {
	t.Helper()
	var running atomic.Int32
	spec := tools.NewSpec("sleepy", "Sleep, then echo ms", tools.ParameterSchema{
		Properties: map[string]tools.Property{"ms": {Type: tools.TypeInteger}},
		Required:   []string{"ms"},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			cur := peak.Load()
			if n <= cur || peak.CompareAndSwap(cur, n) {
				break
			}
		}
		ms, _ := args["ms"].(float64)
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return map[string]any{"ms": ms}, nil
	})
	reg := tools.NewRegistry()
	if err := reg.Register(spec); err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestRun_BatchOrderPreserved(t *testing.T) {
	var peak atomic.Int32
	reg := sleepyRegistry(t, &peak)
	p := &scriptedProvider{script: []schema.LLMResponse{
		toolCalls(
			call("first", "sleepy", map[string]any{"ms": 40.0}),
			call("second", "sleepy", map[string]any{"ms": 0.0}),
			call("third", "sleepy", map[string]any{"ms": 20.0}),
		),
		text("done"),
	}}
	r := newRunner(p)

	res, err := r.Run(context.Background(), Request{UserMessage: "go", Tools: reg, MaxSteps: 2}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []string
	for _, cr := range res.ToolResults[0] {
		ids = append(ids, cr.ID)
	}
	if !reflect.DeepEqual(ids, []string{"first", "second", "third"}) {
		t.Errorf("expected request order, got %v", ids)
	}
	msgs := p.calls[1].Messages
	for i, want := range []string{"first", "second", "third"} {
		if got := msgs[2+i].ToolCallID; got != want {
			t.Errorf("tool message %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestRun_ParallelLimit(t *testing.T) {
	var peak atomic.Int32
	reg := sleepyRegistry(t, &peak)
	p := &scriptedProvider{script: []schema.LLMResponse{
		toolCalls(
			call("a", "sleepy", map[string]any{"ms": 10.0}),
			call("b", "sleepy", map[string]any{"ms": 10.0}),
			call("c", "sleepy", map[string]any{"ms": 10.0}),
		),
		text("done"),
	}}
	r := NewLoopRunner(p, schema.NewAgentSettings("", 10, 0, 1024).WithParallelTools(1))

	if _, err := r.Run(context.Background(), Request{UserMessage: "go", Tools: reg, MaxSteps: 2}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := peak.Load(); got != 1 {
		t.Errorf("expected at most 1 concurrent tool, saw %d", got)
	}
}

// ─── Failures ──────────────────────────────────────────────────────────────

func TestRun_EndpointError(t *testing.T) {
	boom := errors.New("HTTP 500: upstream exploded")
	p := &scriptedProvider{err: boom}
	r := newRunner(p)

	res, err := r.Run(context.Background(), Request{UserMessage: "2+2", MaxSteps: 5}, nil)
	var ee *EndpointError
	if !errors.As(err, &ee) {
		t.Fatalf("expected EndpointError, got %v", err)
	}
	if ee.Step != 1 || !errors.Is(err, boom) {
		t.Errorf("unexpected endpoint error %+v", ee)
	}
	if p.callCount() != 1 || res.Steps != 1 {
		t.Errorf("expected the run to stop after one call, got %d", p.callCount())
	}
}

func TestRun_CancelledDuringBatch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	reg := tools.NewRegistry()
	err := reg.Register(tools.NewSpec("block", "Blocks until released", tools.ParameterSchema{},
		func(context.Context, map[string]any) (any, error) {
			close(started)
			<-release
			return "late", nil
		}))
	if err != nil {
		t.Fatal(err)
	}

	p := &scriptedProvider{script: []schema.LLMResponse{toolCalls(call("c1", "block", nil)), text("never")}}
	r := newRunner(p)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	res, runErr := r.Run(ctx, Request{UserMessage: "wait", Tools: reg, MaxSteps: 3}, nil)
	if !errors.Is(runErr, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", runErr)
	}
	if len(res.ToolResults) != 0 {
		t.Errorf("expected no results for the abandoned batch, got %v", res.ToolResults)
	}
	msgs := res.Conversation.Messages
	if last := msgs[len(msgs)-1]; last.Role != schema.RoleAssistant {
		t.Errorf("expected the conversation to end at the assistant tool call, got %q", last.Role)
	}
	if p.callCount() != 1 {
		t.Errorf("expected no further model calls, got %d", p.callCount())
	}
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &scriptedProvider{script: []schema.LLMResponse{text("hi")}}
	r := newRunner(p)

	if _, err := r.Run(ctx, Request{UserMessage: "hi", MaxSteps: 1}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if p.callCount() != 0 {
		t.Errorf("expected no model calls, got %d", p.callCount())
	}
}

// ─── Determinism ───────────────────────────────────────────────────────────

func TestRun_ReplayIsDeterministic(t *testing.T) {
	script := func() []schema.LLMResponse {
		return []schema.LLMResponse{
			toolCalls(
				call("c1", "add", map[string]any{"a": 1847.0, "b": 3256.0}),
				call("c2", "calculator", map[string]any{"expression": "sqrt(16)"}),
				call("c3", "divide", map[string]any{"a": 1.0, "b": 0.0}),
			),
			toolCalls(call("c4", "multiply", map[string]any{"a": 5103.0, "b": 127.0})),
			text("648081"),
		}
	}

	run := func() []string {
		p := &scriptedProvider{script: script()}
		r := newRunner(p)
		res, err := r.Run(context.Background(), Request{UserMessage: "q", Tools: tools.NewBuiltinRegistry(), MaxSteps: 5}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var out []string
		for step, batch := range res.ToolResults {
			for _, cr := range batch {
				out = append(out, fmt.Sprintf("%d/%s/%s/%s", step, cr.ID, cr.Name, cr.Content()))
			}
		}
		return out
	}

	first, second := run(), run()
	if len(first) != 4 {
		t.Fatalf("expected 4 tool results, got %v", first)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("replay differs:\n%v\n%v", first, second)
	}
}
