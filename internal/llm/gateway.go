package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/config"
	"github.com/promptarena/promptarena/internal/metrics"
)

type gateway struct {
	providers       map[string]Provider
	defaultProvider string
	defaultModel    string
	maxTokens       int
	timeout         time.Duration
}

func NewGateway(cfg config.LLMConfig) Gateway {
	g := &gateway{
		providers:       make(map[string]Provider),
		defaultProvider: cfg.DefaultProvider,
		defaultModel:    cfg.DefaultModel,
		maxTokens:       cfg.MaxTokens,
		timeout:         cfg.Timeout,
	}

	if cfg.OpenAIKey != "" || cfg.OpenAIBaseURL != "" {
		g.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	}
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}

	return g
}

func (g *gateway) Provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured: %w", name, apperr.ErrValidation)
	}
	return p, nil
}

func (g *gateway) DefaultModel() string { return g.defaultModel }

func (g *gateway) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
	}
	if req.Model == "" {
		req.Model = g.defaultModel
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = g.maxTokens
	}

	p, err := g.Provider(providerName)
	if err != nil {
		return nil, err
	}

	// The provider call is the only network-bound operation in the request
	// path; bound it. An expired deadline is indistinguishable from an
	// unreachable provider from the caller's point of view.
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := p.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: timed out after %s", apperr.ErrProviderUnreachable, g.timeout)
		}
		metrics.ObserveLLMCall(providerName, req.Model, "error", 0)
		return nil, err
	}

	metrics.ObserveLLMCall(providerName, req.Model, "ok", time.Duration(resp.LatencyMs)*time.Millisecond)
	slog.Info("llm completion",
		"provider", resp.Provider,
		"model", resp.Model,
		"tokens_input", resp.TokensInput,
		"tokens_output", resp.TokensOutput,
		"cost_usd", resp.CostUSD,
		"latency_ms", resp.LatencyMs,
	)
	return resp, nil
}

func (g *gateway) ListModels() []ModelInfo {
	var models []ModelInfo
	for _, p := range g.providers {
		for _, m := range p.Models() {
			models = append(models, ModelInfo{Provider: p.Name(), Model: m})
		}
	}
	return models
}
