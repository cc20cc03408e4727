package providers

import "strings"

// ModelOverride applies extra parameters for a specific model pattern.
type ModelOverride struct {
	Pattern   string         // case-insensitive substring to match in model name
	Overrides map[string]any // parameters to merge into the request body
}

// ProviderSpec is the metadata record for one LLM provider.
type ProviderSpec struct {
	Name        string   // config value, e.g. "openai"
	Keywords    []string // model-name keywords for matching (lowercase)
	EnvKey      string   // env var holding the API key
	DisplayName string   // shown in `toolcalc status`

	// Gateway detection
	IsGateway           bool   // routes any model (OpenRouter, …)
	IsLocal             bool   // local deployment (vLLM, Ollama)
	DetectByKeyPrefix   string // match api_key prefix to identify gateway
	DetectByBaseKeyword string // match substring in api_base URL
	DefaultAPIBase      string // fallback base URL when none is configured

	// IsAnthropic selects the Messages API wire format.
	IsAnthropic bool

	// Per-model parameter overrides
	ModelOverrides []ModelOverride
}

// Label returns the display name, defaulting to Title-cased Name.
func (s ProviderSpec) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return strings.ToTitle(s.Name[:1]) + s.Name[1:]
}

// PROVIDERS is the provider catalogue. Order = match priority.
var PROVIDERS = []ProviderSpec{
	{
		Name:        "custom",
		DisplayName: "Custom",
	},
	{
		Name:                "openrouter",
		Keywords:            []string{"openrouter"},
		EnvKey:              "OPENROUTER_API_KEY",
		DisplayName:         "OpenRouter",
		IsGateway:           true,
		DetectByKeyPrefix:   "sk-or-",
		DetectByBaseKeyword: "openrouter",
		DefaultAPIBase:      "https://openrouter.ai/api/v1",
	},
	{
		Name:           "anthropic",
		Keywords:       []string{"anthropic", "claude"},
		EnvKey:         "ANTHROPIC_API_KEY",
		DisplayName:    "Anthropic",
		DefaultAPIBase: "https://api.anthropic.com/v1",
		IsAnthropic:    true,
	},
	{
		Name:           "openai",
		Keywords:       []string{"openai", "gpt", "o1", "o3", "o4"},
		EnvKey:         "OPENAI_API_KEY",
		DisplayName:    "OpenAI",
		DefaultAPIBase: "https://api.openai.com/v1",
	},
	{
		Name:           "deepseek",
		Keywords:       []string{"deepseek"},
		EnvKey:         "DEEPSEEK_API_KEY",
		DisplayName:    "DeepSeek",
		DefaultAPIBase: "https://api.deepseek.com/v1",
	},
	{
		Name:           "groq",
		Keywords:       []string{"groq"},
		EnvKey:         "GROQ_API_KEY",
		DisplayName:    "Groq",
		DefaultAPIBase: "https://api.groq.com/openai/v1",
	},
	{
		Name:           "gemini",
		Keywords:       []string{"gemini"},
		EnvKey:         "GEMINI_API_KEY",
		DisplayName:    "Gemini",
		DefaultAPIBase: "https://generativelanguage.googleapis.com/v1beta/openai",
	},
	{
		Name:           "moonshot",
		Keywords:       []string{"moonshot", "kimi"},
		EnvKey:         "MOONSHOT_API_KEY",
		DisplayName:    "Moonshot",
		DefaultAPIBase: "https://api.moonshot.ai/v1",
		ModelOverrides: []ModelOverride{
			{Pattern: "kimi-k2.5", Overrides: map[string]any{"temperature": 1.0}},
		},
	},
	{
		Name:                "ollama",
		Keywords:            []string{"ollama", "llama", "qwen"},
		DisplayName:         "Ollama/Local",
		IsLocal:             true,
		DetectByBaseKeyword: "11434",
		DefaultAPIBase:      "http://localhost:11434/v1",
	},
}

// FindByModel matches a standard provider by model-name keyword (case-insensitive).
// Skips gateways and local providers; those are matched by api_key/api_base.
func FindByModel(model string) *ProviderSpec {
	modelLower := strings.ToLower(model)
	modelNorm := strings.ReplaceAll(modelLower, "-", "_")
	modelPrefix, _, _ := strings.Cut(modelLower, "/")
	normalizedPrefix := strings.ReplaceAll(modelPrefix, "-", "_")

	var std []int
	for i := range PROVIDERS {
		if !PROVIDERS[i].IsGateway && !PROVIDERS[i].IsLocal {
			std = append(std, i)
		}
	}

	// Prefer explicit provider prefix.
	for _, i := range std {
		spec := &PROVIDERS[i]
		if strings.Contains(modelLower, "/") && normalizedPrefix == spec.Name {
			return spec
		}
	}

	for _, i := range std {
		spec := &PROVIDERS[i]
		for _, kw := range spec.Keywords {
			kw = strings.ToLower(kw)
			kwNorm := strings.ReplaceAll(kw, "-", "_")
			if strings.Contains(modelLower, kw) || strings.Contains(modelNorm, kwNorm) {
				return spec
			}
		}
	}
	return nil
}

// FindGateway detects the gateway or local provider.
// Priority: (1) explicit provider name, (2) api_key prefix, (3) api_base keyword.
func FindGateway(providerName, apiKey, apiBase string) *ProviderSpec {
	if providerName != "" {
		if s := FindByName(providerName); s != nil && (s.IsGateway || s.IsLocal) {
			return s
		}
	}
	for i := range PROVIDERS {
		spec := &PROVIDERS[i]
		if spec.DetectByKeyPrefix != "" && apiKey != "" && strings.HasPrefix(apiKey, spec.DetectByKeyPrefix) {
			return spec
		}
		if spec.DetectByBaseKeyword != "" && apiBase != "" && strings.Contains(apiBase, spec.DetectByBaseKeyword) {
			return spec
		}
	}
	return nil
}

// FindByName returns the ProviderSpec whose Name equals name.
func FindByName(name string) *ProviderSpec {
	for i := range PROVIDERS {
		if PROVIDERS[i].Name == name {
			return &PROVIDERS[i]
		}
	}
	return nil
}

// Resolve picks the provider for an explicit name or, when name is empty,
// for the model, the api key or the api base. It never returns nil; the
// fallback is "openai".
func Resolve(name, model, apiKey, apiBase string) *ProviderSpec {
	if s := FindGateway(name, apiKey, apiBase); s != nil {
		return s
	}
	if name != "" {
		if s := FindByName(name); s != nil {
			return s
		}
	}
	if s := FindByModel(model); s != nil {
		return s
	}
	return FindByName("openai")
}
