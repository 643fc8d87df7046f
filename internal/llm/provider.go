package llm

import (
	"context"
)

// Provider abstracts an LLM provider (OpenAI-compatible, Anthropic).
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
	Name() string
	Models() []string
}

// Gateway routes a completion to a configured provider. It performs no
// retries: on failure the caller decides whether a record, an error, or a
// fresh attempt is the right response.
type Gateway interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
	Provider(name string) (Provider, error)
	ListModels() []ModelInfo
	DefaultModel() string
}

// CompletionRequest is a single system+user prompt pair with generation
// parameters.
type CompletionRequest struct {
	Provider     string  `json:"provider,omitempty"`
	Model        string  `json:"model,omitempty"`
	SystemPrompt string  `json:"system_prompt"`
	UserPrompt   string  `json:"user_prompt"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
}

// CompletionResult is the provider's answer plus accounting metadata.
// LatencyMs is wall-clock around the single outbound call.
type CompletionResult struct {
	OutputText   string  `json:"output_text"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	TokensInput  int     `json:"tokens_input"`
	TokensOutput int     `json:"tokens_output"`
	CostUSD      float64 `json:"cost_usd"`
	LatencyMs    int64   `json:"latency_ms"`
}

// TokensUsed is the combined prompt and completion token count.
func (r *CompletionResult) TokensUsed() int {
	return r.TokensInput + r.TokensOutput
}

// ModelInfo describes an available model.
type ModelInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}
