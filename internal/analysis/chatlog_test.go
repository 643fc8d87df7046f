package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/llm"
)

func TestFormatMessages(t *testing.T) {
	got := FormatMessages([]ChatMessage{
		{Sender: "小明", Content: "早上好", Timestamp: "2025-06-01 09:00"},
		{Content: "hello", Timestamp: "2025-06-01 09:01"},
	})

	assert.Equal(t, "[2025-06-01 09:00] 小明: 早上好\n[2025-06-01 09:01] Unknown: hello", got)
}

func TestStatistics(t *testing.T) {
	stats := Statistics([]ChatMessage{
		{Sender: "a"}, {Sender: "b"}, {Sender: "a"},
	}, "wechat", "投资群")

	assert.Equal(t, 3, stats.MessageCount)
	assert.Equal(t, 2, stats.UniqueSenders)
	assert.Equal(t, "wechat", stats.Platform)
}

type fixedGateway struct {
	out string
}

func (g *fixedGateway) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResult, error) {
	return &llm.CompletionResult{OutputText: g.out, TokensInput: 5, TokensOutput: 2}, nil
}
func (g *fixedGateway) Provider(string) (llm.Provider, error) { return nil, nil }
func (g *fixedGateway) ListModels() []llm.ModelInfo           { return nil }
func (g *fixedGateway) DefaultModel() string                  { return "m" }

func TestBrowserLLMAnalyze(t *testing.T) {
	res, err := BrowserLLMAnalyze(context.Background(), &fixedGateway{out: "摘要"}, "page_summary", "正文内容")
	require.NoError(t, err)

	assert.Equal(t, "摘要", res.Result)
	assert.Contains(t, res.PromptUsed, "正文内容")
	assert.NotContains(t, res.PromptUsed, "{content}")
	assert.Equal(t, "page_summary", res.TaskType)
}

func TestBrowserLLMAnalyzeUnknownTaskType(t *testing.T) {
	_, err := BrowserLLMAnalyze(context.Background(), &fixedGateway{}, "mystery", "x")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestBrowserLLMAnalyzeEmptyContent(t *testing.T) {
	_, err := BrowserLLMAnalyze(context.Background(), &fixedGateway{}, "page_summary", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
