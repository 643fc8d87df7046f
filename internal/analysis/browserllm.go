package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/llm"
)

const browserLLMSystemPrompt = "你是一个专业的内容分析助手。请提供准确、结构化的分析结果。"

// browserLLMPrompts maps integration task types to their prompt templates.
// The single placeholder is {content}.
var browserLLMPrompts = map[string]string{
	"page_summary": `请对以下网页内容进行摘要：

{content}

请提供：
1. 核心内容概述（100字以内）
2. 关键信息点（3-5个）
3. 相关标签`,

	"content_analysis": `请分析以下内容：

{content}

请从以下维度分析：
1. 主题和类型
2. 核心观点
3. 情感倾向
4. 关键实体（人物、组织、地点等）`,

	"chat_extraction": `请从以下内容中提取聊天记录：

{content}

请识别：
1. 对话参与者
2. 对话主题
3. 关键信息
4. 时间线（如果有）`,

	"sentiment_analysis": `请分析以下内容的情感：

{content}

请评估：
1. 整体情感（正面/负面/中性）
2. 情感强度（1-10）
3. 主要情感类型（如喜悦、愤怒、悲伤等）
4. 情感变化趋势（如果有多段内容）`,
}

// BrowserLLMTaskTypes lists the supported integration task types.
func BrowserLLMTaskTypes() []string {
	return []string{"page_summary", "content_analysis", "chat_extraction", "sentiment_analysis"}
}

type BrowserLLMResult struct {
	Result       string `json:"result"`
	PromptUsed   string `json:"prompt_used"`
	TokensInput  int    `json:"tokens_input"`
	TokensOutput int    `json:"tokens_output"`
	DurationMs   int64  `json:"duration_ms"`
	TaskType     string `json:"task_type"`
}

// BrowserLLMAnalyze serves the browser-orchestrator integration: a one-shot
// content analysis with a fixed per-task-type prompt.
func BrowserLLMAnalyze(ctx context.Context, gateway llm.Gateway, taskType, content string) (*BrowserLLMResult, error) {
	tmpl, ok := browserLLMPrompts[taskType]
	if !ok {
		return nil, apperr.Validationf("unknown task type %q", taskType)
	}
	if content == "" {
		return nil, apperr.Validationf("content is required")
	}

	rendered := strings.ReplaceAll(tmpl, "{content}", content)

	start := time.Now()
	result, err := gateway.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: browserLLMSystemPrompt,
		UserPrompt:   rendered,
	})
	if err != nil {
		return nil, err
	}

	return &BrowserLLMResult{
		Result:       result.OutputText,
		PromptUsed:   rendered,
		TokensInput:  result.TokensInput,
		TokensOutput: result.TokensOutput,
		DurationMs:   time.Since(start).Milliseconds(),
		TaskType:     taskType,
	}, nil
}
