package template

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/llm"
	"github.com/promptarena/promptarena/internal/models"
)

type fixedGateway struct {
	output string
	err    error
	calls  int
}

func (g *fixedGateway) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResult, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &llm.CompletionResult{OutputText: g.output}, nil
}

func (g *fixedGateway) Provider(name string) (llm.Provider, error) { return nil, nil }
func (g *fixedGateway) ListModels() []llm.ModelInfo                { return nil }
func (g *fixedGateway) DefaultModel() string                       { return "stub" }

func TestGenerateBuiltinsOnly(t *testing.T) {
	gw := &fixedGateway{}

	result, err := Generate(context.Background(), gw, GenerateRequest{
		GroupType:       models.GroupInvestment,
		TimeGranularity: models.GranularityDaily,
	})
	require.NoError(t, err)

	assert.Len(t, result.Variants, 3)
	assert.Nil(t, result.Custom)
	assert.Zero(t, gw.calls, "no custom requirements means no provider call")
}

func TestGenerateCustomTemplate(t *testing.T) {
	gw := &fixedGateway{output: "请分析群聊：\n{chat_content}\n重点关注风险。"}

	result, err := Generate(context.Background(), gw, GenerateRequest{
		GroupType:          models.GroupInvestment,
		CustomRequirements: "重点关注风险",
	})
	require.NoError(t, err)

	require.NotNil(t, result.Custom)
	assert.Contains(t, result.Custom.Template, "{chat_content}")
	assert.Equal(t, "重点关注风险", result.Custom.Requirements)
	assert.False(t, result.Custom.IsBuiltin)
	assert.Equal(t, 1, gw.calls)
}

func TestGenerateCustomMissingPlaceholder(t *testing.T) {
	gw := &fixedGateway{output: "这是一个没有占位符的模板。"}

	_, err := Generate(context.Background(), gw, GenerateRequest{
		GroupType:          models.GroupScience,
		CustomRequirements: "随便写点什么",
	})
	assert.ErrorIs(t, err, apperr.ErrProviderMalformed)
}

func TestGenerateUnknownGroupType(t *testing.T) {
	_, err := Generate(context.Background(), &fixedGateway{}, GenerateRequest{
		GroupType: "nonsense",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAllBuiltinsRenderable(t *testing.T) {
	all := AllBuiltins()
	require.NotEmpty(t, all)
	for _, v := range all {
		assert.True(t, v.IsBuiltin)
		assert.Contains(t, v.Template, "{chat_content}")
	}
}
