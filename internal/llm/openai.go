package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/pkg/tokenizer"
)

type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider builds a provider against the official API, or an
// OpenAI-compatible endpoint when baseURL is set.
func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Models() []string {
	return []string{
		"gpt-4", "gpt-4-turbo", "gpt-4o", "gpt-4o-mini", "gpt-3.5-turbo",
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	start := time.Now()

	msgs := []openai.ChatCompletionMessage{}
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt})

	oReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: msgs,
	}
	if req.Temperature > 0 {
		oReq.Temperature = float32(req.Temperature)
	}
	if req.MaxTokens > 0 {
		oReq.MaxTokens = req.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, oReq)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai returned no choices", apperr.ErrProviderMalformed)
	}
	content := resp.Choices[0].Message.Content

	inputTokens := resp.Usage.PromptTokens
	outputTokens := resp.Usage.CompletionTokens
	if inputTokens == 0 && outputTokens == 0 {
		// Some OpenAI-compatible servers omit usage. Estimate so accounting
		// never records a zero-token successful call.
		inputTokens = tokenizer.Estimate(req.SystemPrompt + req.UserPrompt)
		outputTokens = tokenizer.Estimate(content)
	}

	return &CompletionResult{
		OutputText:   content,
		Provider:     "openai",
		Model:        resp.Model,
		TokensInput:  inputTokens,
		TokensOutput: outputTokens,
		CostUSD:      CalculateCost(req.Model, inputTokens, outputTokens),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: openai status %d: %s", apperr.ErrProviderRejected, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: openai: %v", apperr.ErrProviderUnreachable, err)
	}

	return fmt.Errorf("%w: openai: %v", apperr.ErrProviderUnreachable, err)
}
