package template

import (
	"context"
	"fmt"
	"strings"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/llm"
	"github.com/promptarena/promptarena/internal/models"
)

const generateSystemPrompt = "你是一个提示词工程专家。请根据用户需求生成高质量的群聊分析提示词模板。"

type GenerateRequest struct {
	GroupType          models.GroupType       `json:"group_type"`
	TimeGranularity    models.TimeGranularity `json:"time_granularity"`
	Styles             []models.PromptStyle   `json:"styles,omitempty"`
	CustomRequirements string                 `json:"custom_requirements,omitempty"`
}

// CustomVariant is an LLM-drafted template, produced alongside the builtin
// variants when the caller supplies free-form requirements.
type CustomVariant struct {
	Template     string `json:"template"`
	Requirements string `json:"requirements"`
	IsBuiltin    bool   `json:"is_builtin"`
}

type GenerateResult struct {
	Variants []BuiltinVariant `json:"variants"`
	Custom   *CustomVariant   `json:"custom,omitempty"`
}

// Generate assembles template variants for a classification: the builtin
// library entries for the requested styles, plus an LLM-drafted template when
// custom requirements are given.
func Generate(ctx context.Context, gateway llm.Gateway, req GenerateRequest) (*GenerateResult, error) {
	if !models.ValidGroupType(req.GroupType) {
		return nil, apperr.Validationf("unknown group type %q", req.GroupType)
	}
	if req.TimeGranularity == "" {
		req.TimeGranularity = models.GranularityDaily
	}
	if len(req.Styles) == 0 {
		req.Styles = []models.PromptStyle{
			models.StyleAnalytical, models.StyleSummary, models.StyleInsight,
		}
	}

	result := &GenerateResult{
		Variants: ListBuiltins(req.GroupType, req.TimeGranularity, req.Styles),
	}
	if result.Variants == nil {
		result.Variants = []BuiltinVariant{}
	}

	if req.CustomRequirements == "" {
		return result, nil
	}

	prompt := fmt.Sprintf(`请为一个%s类型的群聊生成一个%s分析提示词模板。

用户需求：
%s

要求：
1. 模板必须包含占位符 {chat_content}（聊天记录）
2. 可以使用占位符 {start_date}、{end_date}、{member_filter_text}
3. 直接输出模板文本，不要附加解释`,
		req.GroupType, req.TimeGranularity, req.CustomRequirements)

	completion, err := gateway.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: generateSystemPrompt,
		UserPrompt:   prompt,
	})
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(completion.OutputText)
	if !strings.Contains(text, "{"+VarChatContent+"}") {
		return nil, fmt.Errorf("%w: generated template lacks {%s}",
			apperr.ErrProviderMalformed, VarChatContent)
	}

	result.Custom = &CustomVariant{
		Template:     text,
		Requirements: req.CustomRequirements,
	}
	return result, nil
}
