package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"github.com/crystaldolphin/toolcalc/internal/schema"
)

const defaultTimeout = 120 * time.Second

// OpenAIProvider makes direct HTTP calls to any OpenAI-compatible endpoint,
// and also handles the Anthropic Messages API as a special case.
type OpenAIProvider struct {
	apiKey       string
	apiBase      string
	defaultModel string
	extraHeaders map[string]string
	spec         *ProviderSpec
	isAnthropic  bool
	httpClient   *http.Client
}

// NewOpenAIProvider constructs a provider from raw config values.
// The caller extracts these from config.Config to avoid an import cycle.
func NewOpenAIProvider(
	apiKey, apiBase, defaultModel, providerName string,
	extraHeaders map[string]string,
	timeout time.Duration,
) *OpenAIProvider {
	spec := Resolve(providerName, defaultModel, apiKey, apiBase)

	effectiveBase := apiBase
	if effectiveBase == "" {
		effectiveBase = spec.DefaultAPIBase
	}
	if effectiveBase == "" {
		effectiveBase = "https://api.openai.com/v1"
	}
	effectiveBase = strings.TrimRight(effectiveBase, "/")

	isAnthropic := spec.IsAnthropic ||
		strings.Contains(strings.ToLower(effectiveBase), "anthropic.com")

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &OpenAIProvider{
		apiKey:       apiKey,
		apiBase:      effectiveBase,
		defaultModel: defaultModel,
		extraHeaders: extraHeaders,
		spec:         spec,
		isAnthropic:  isAnthropic,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }

// Spec returns the provider metadata this client resolved to.
func (p *OpenAIProvider) Spec() *ProviderSpec { return p.spec }

// APIBase returns the effective base URL.
func (p *OpenAIProvider) APIBase() string { return p.apiBase }

// Chat implements schema.LLMProvider. It dispatches to Anthropic or OpenAI-compat paths.
// Transport failures and non-200 answers are returned as errors.
func (p *OpenAIProvider) Chat(
	ctx context.Context,
	messages schema.Messages,
	tools []map[string]any,
	opts schema.ChatOptions,
) (schema.LLMResponse, error) {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	if p.isAnthropic {
		return p.chatAnthropic(ctx, messages, tools, p.resolveModel(model), maxTokens, opts.Temperature)
	}

	return p.chatOpenAI(ctx, messages, tools, p.resolveModel(model), maxTokens, opts.Temperature)
}

// ---------------------------------------------------------------------------
// OpenAI-compatible path
// ---------------------------------------------------------------------------

func (p *OpenAIProvider) chatOpenAI(
	ctx context.Context,
	messages schema.Messages,
	tools []map[string]any,
	model string,
	maxTokens int,
	temperature float64,
) (schema.LLMResponse, error) {
	body := map[string]any{
		"model":       model,
		"messages":    sanitizeMessages(messages),
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}
	if len(tools) > 0 {
		body["tools"] = tools
		body["tool_choice"] = "auto"
	}
	p.applyModelOverrides(model, body)

	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	raw, err := p.post(ctx, "/chat/completions", body, headers)
	if err != nil {
		return schema.LLMResponse{}, err
	}
	return parseOpenAIResponse(raw)
}

// ---------------------------------------------------------------------------
// Anthropic Messages API path
// ---------------------------------------------------------------------------

func (p *OpenAIProvider) chatAnthropic(
	ctx context.Context,
	messages schema.Messages,
	tools []map[string]any,
	model string,
	maxTokens int,
	temperature float64,
) (schema.LLMResponse, error) {
	system, converted := convertMessagesToAnthropic(messages)

	body := map[string]any{
		"model":       model,
		"messages":    converted,
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}
	if system != "" {
		body["system"] = system
	}
	if len(tools) > 0 {
		body["tools"] = convertToolsToAnthropic(tools)
	}

	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": "2023-06-01",
	}
	raw, err := p.post(ctx, "/messages", body, headers)
	if err != nil {
		return schema.LLMResponse{}, err
	}
	return parseAnthropicResponse(raw)
}

// post sends body as JSON and returns the raw 200 response.
func (p *OpenAIProvider) post(ctx context.Context, path string, body map[string]any, headers map[string]string) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for k, v := range p.extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

// ---------------------------------------------------------------------------
// Model resolution
// ---------------------------------------------------------------------------

// resolveModel strips routing prefixes from the model string so the provider
// API receives the bare model name it expects.
//
// Gateways (e.g. OpenRouter) keep the "provider/model" sub-prefix because
// they need it for routing; only their own "openrouter/" prefix is stripped.
// Standard providers strip any known provider-name prefix.
func (p *OpenAIProvider) resolveModel(model string) string {
	full := p.spec.Name + "/"
	if strings.HasPrefix(strings.ToLower(model), full) {
		return model[len(full):]
	}
	if p.spec.IsGateway || p.spec.IsLocal {
		return model
	}
	if prefix, rest, ok := strings.Cut(model, "/"); ok {
		norm := strings.ReplaceAll(strings.ToLower(prefix), "-", "_")
		if FindByName(norm) != nil {
			return rest
		}
	}
	return model
}

// ---------------------------------------------------------------------------
// Message sanitisation
// ---------------------------------------------------------------------------

// messageToWireMap converts a typed Message to the OpenAI wire-format map.
func messageToWireMap(m schema.Message) map[string]any {
	wire := map[string]any{
		"role":    m.Role,
		"content": m.Content,
	}
	if m.Role == schema.RoleAssistant {
		// Strict providers require "content" even for tool-call-only messages.
		if s, ok := m.Content.(*string); ok && s == nil {
			wire["content"] = nil
		}
		if len(m.ToolCalls) > 0 {
			raw := make([]map[string]any, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				raw[i] = tc.ToWireMap()
			}
			wire["tool_calls"] = raw
		}
		if m.ReasoningContent != nil {
			wire["reasoning_content"] = *m.ReasoningContent
		}
	}
	if m.Role == schema.RoleTool {
		wire["tool_call_id"] = m.ToolCallID
		wire["name"] = m.ToolName
	}
	return wire
}

func sanitizeMessages(messages schema.Messages) []map[string]any {
	out := make([]map[string]any, 0, len(messages.Messages))
	for _, m := range messages.Messages {
		out = append(out, messageToWireMap(m))
	}
	return out
}

// ---------------------------------------------------------------------------
// Model overrides
// ---------------------------------------------------------------------------

func (p *OpenAIProvider) applyModelOverrides(model string, body map[string]any) {
	modelLower := strings.ToLower(model)
	spec := p.spec
	if len(spec.ModelOverrides) == 0 {
		if s := FindByModel(model); s != nil {
			spec = s
		}
	}
	for _, ov := range spec.ModelOverrides {
		if strings.Contains(modelLower, strings.ToLower(ov.Pattern)) {
			maps.Copy(body, ov.Overrides)
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Anthropic format helpers
// ---------------------------------------------------------------------------

// convertMessagesToAnthropic converts typed messages to Anthropic's wire format.
// Returns (system_prompt, converted_messages).
func convertMessagesToAnthropic(messages schema.Messages) (string, []map[string]any) {
	var system string
	var out []map[string]any

	for _, msg := range messages.Messages {
		switch msg.Role {
		case schema.RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += msg.Text()

		case schema.RoleUser:
			out = append(out, map[string]any{
				"role":    "user",
				"content": msg.Text(),
			})

		case schema.RoleTool:
			block := map[string]any{
				"type":        "tool_result",
				"tool_use_id": msg.ToolCallID,
				"content":     msg.Text(),
			}
			// Merge consecutive tool results into one user message.
			if len(out) > 0 && out[len(out)-1]["role"] == "user" {
				prev := out[len(out)-1]
				switch c := prev["content"].(type) {
				case []any:
					prev["content"] = append(c, block)
				default:
					prev["content"] = []any{block}
				}
			} else {
				out = append(out, map[string]any{"role": "user", "content": []any{block}})
			}

		case schema.RoleAssistant:
			var blocks []any
			if s := msg.Text(); s != "" {
				blocks = append(blocks, map[string]any{"type": "text", "text": s})
			}
			for _, tc := range msg.ToolCalls {
				input := tc.Arguments
				if input == nil {
					input = map[string]any{}
				}
				blocks = append(blocks, map[string]any{
					"type":  "tool_use",
					"id":    tc.ID,
					"name":  tc.Name,
					"input": input,
				})
			}
			if len(blocks) == 0 {
				blocks = []any{map[string]any{"type": "text", "text": ""}}
			}
			out = append(out, map[string]any{"role": "assistant", "content": blocks})
		}
	}
	return system, out
}

// convertToolsToAnthropic converts OpenAI function schemas to Anthropic tool format.
// Key difference: "parameters" → "input_schema".
func convertToolsToAnthropic(tools []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		fn, _ := t["function"].(map[string]any)
		if fn == nil {
			continue
		}
		out = append(out, map[string]any{
			"name":         fn["name"],
			"description":  fn["description"],
			"input_schema": fn["parameters"],
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Response parsers
// ---------------------------------------------------------------------------

// openAIRespBody is the subset of the OpenAI chat completion response we care about.
type openAIRespBody struct {
	Choices []struct {
		Message struct {
			Content          any `json:"content"`
			ReasoningContent any `json:"reasoning_content"`
			ToolCalls        []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func parseOpenAIResponse(raw []byte) (schema.LLMResponse, error) {
	var body openAIRespBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.LLMResponse{}, fmt.Errorf("parse OpenAI response: %w", err)
	}
	if len(body.Choices) == 0 {
		return schema.LLMResponse{}, fmt.Errorf("empty choices in response")
	}

	msg := body.Choices[0].Message

	var content *string
	if c, ok := msg.Content.(string); ok && c != "" {
		content = &c
	}

	var reasoningContent *string
	if r, ok := msg.ReasoningContent.(string); ok && r != "" {
		reasoningContent = &r
	}

	var toolCalls []schema.ToolCallRequest
	for _, tc := range msg.ToolCalls {
		args, err := repairJSON(tc.Function.Arguments)
		if err != nil {
			slog.Warn("failed to parse tool arguments", "tool", tc.Function.Name, "err", err)
			args = map[string]any{}
		}
		toolCalls = append(toolCalls, schema.ToolCallRequest{
			Id:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	usage := map[string]int{
		"prompt_tokens":     body.Usage.PromptTokens,
		"completion_tokens": body.Usage.CompletionTokens,
		"total_tokens":      body.Usage.TotalTokens,
	}

	finish := body.Choices[0].FinishReason
	if finish == "" {
		finish = "stop"
	}

	return schema.LLMResponse{
		Content:          content,
		ToolCalls:        toolCalls,
		FinishReason:     finish,
		Usage:            usage,
		ReasoningContent: reasoningContent,
	}, nil
}

// anthropicRespBody models the Anthropic Messages API response.
type anthropicRespBody struct {
	Content []struct {
		Type  string         `json:"type"`
		Text  string         `json:"text"`  // type=text
		ID    string         `json:"id"`    // type=tool_use
		Name  string         `json:"name"`  // type=tool_use
		Input map[string]any `json:"input"` // type=tool_use
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func parseAnthropicResponse(raw []byte) (schema.LLMResponse, error) {
	var body anthropicRespBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.LLMResponse{}, fmt.Errorf("parse Anthropic response: %w", err)
	}

	var contentStr string
	var toolCalls []schema.ToolCallRequest

	for _, block := range body.Content {
		switch block.Type {
		case "text":
			contentStr += block.Text
		case "tool_use":
			args := block.Input
			if args == nil {
				args = map[string]any{}
			}
			toolCalls = append(toolCalls, schema.ToolCallRequest{
				Id:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}

	var content *string
	if contentStr != "" {
		content = &contentStr
	}

	finish := "stop"
	if body.StopReason == "tool_use" {
		finish = "tool_calls"
	} else if body.StopReason != "" && body.StopReason != "end_turn" {
		finish = body.StopReason
	}

	usage := map[string]int{
		"prompt_tokens":     body.Usage.InputTokens,
		"completion_tokens": body.Usage.OutputTokens,
		"total_tokens":      body.Usage.InputTokens + body.Usage.OutputTokens,
	}

	return schema.LLMResponse{
		Content:      content,
		ToolCalls:    toolCalls,
		FinishReason: finish,
		Usage:        usage,
	}, nil
}

// ---------------------------------------------------------------------------
// JSON repair
// ---------------------------------------------------------------------------

// repairJSON decodes tool arguments, running them through jsonrepair when
// the model emitted truncated or otherwise malformed JSON.
func repairJSON(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return orEmpty(out), nil
	}

	fixed, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return map[string]any{}, fmt.Errorf("cannot repair JSON %q: %w", raw, err)
	}
	out = nil
	if err := json.Unmarshal([]byte(fixed), &out); err != nil {
		return map[string]any{}, fmt.Errorf("cannot repair JSON %q: %w", raw, err)
	}
	return orEmpty(out), nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
