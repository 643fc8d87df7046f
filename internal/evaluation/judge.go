package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/llm"
	"github.com/promptarena/promptarena/internal/models"
)

const judgeSystemPrompt = `你是一个严格的回答质量评审员。你只输出JSON对象，不输出任何其他文字。
对给定的回答按每个评测维度打0到10分。输出格式：
{"scores": {"<维度名>": <数字>, ...}}
必须覆盖所有给定的维度，分数必须是数字。`

// Judge produces a full score row per execution by asking the model to rate
// each response against the criteria list. One gateway call per execution.
type Judge struct {
	gateway llm.Gateway
}

func NewJudge(gateway llm.Gateway) *Judge {
	return &Judge{gateway: gateway}
}

// ScoreAll rates every execution in the cohort. All-or-nothing: any call or
// parse failure aborts with no partial matrix; callers persist nothing on
// error.
func (j *Judge) ScoreAll(ctx context.Context, executions []models.Execution, criteria map[string]float64) (models.ScoreMatrix, string, error) {
	matrix := make(models.ScoreMatrix, len(executions))
	var notes []string

	for _, exec := range executions {
		scores, err := j.scoreOne(ctx, &exec, criteria)
		if err != nil {
			return nil, "", fmt.Errorf("execution %d: %w", exec.ID, err)
		}
		matrix[exec.ID] = scores
		notes = append(notes, fmt.Sprintf("execution %d scored", exec.ID))
	}

	return matrix, strings.Join(notes, "; "), nil
}

func (j *Judge) scoreOne(ctx context.Context, exec *models.Execution, criteria map[string]float64) (map[string]float64, error) {
	names := make([]string, 0, len(criteria))
	for name := range criteria {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("评测维度：" + strings.Join(names, ", ") + "\n\n")
	b.WriteString("原始问题：\n" + exec.RenderedPrompt + "\n\n")
	b.WriteString("待评审的回答：\n" + exec.Response + "\n")

	result, err := j.gateway.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: judgeSystemPrompt,
		UserPrompt:   b.String(),
	})
	if err != nil {
		return nil, err
	}

	return parseJudgeScores(result.OutputText, names)
}

type judgePayload struct {
	Scores map[string]json.Number `json:"scores"`
}

// parseJudgeScores extracts the score object from judge output. Models wrap
// JSON in prose or code fences often enough that the raw text goes through
// repair first; the repaired payload is then held to a strict schema, with
// every criterion present and numeric in [0, 10].
func parseJudgeScores(raw string, criteria []string) (map[string]float64, error) {
	repaired, err := jsonrepair.RepairJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrScoreParse, err)
	}

	var payload judgePayload
	dec := json.NewDecoder(strings.NewReader(repaired))
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrScoreParse, err)
	}
	if payload.Scores == nil {
		return nil, fmt.Errorf("%w: missing scores object", apperr.ErrScoreParse)
	}

	out := make(map[string]float64, len(criteria))
	for _, name := range criteria {
		num, ok := payload.Scores[name]
		if !ok {
			return nil, fmt.Errorf("%w: criterion %q missing", apperr.ErrScoreParse, name)
		}
		v, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: criterion %q not numeric", apperr.ErrScoreParse, name)
		}
		if v < 0 || v > 10 {
			return nil, fmt.Errorf("%w: criterion %q out of range: %v", apperr.ErrScoreParse, name, v)
		}
		out[name] = v
	}
	return out, nil
}
