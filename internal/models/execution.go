package models

import "time"

// Execution status values. An execution starts as pending, moves to running
// when dispatched and ends as succeeded or failed. Rows are immutable after
// the terminal transition.
const (
	ExecutionPending   = "pending"
	ExecutionRunning   = "running"
	ExecutionSucceeded = "succeeded"
	ExecutionFailed    = "failed"
)

// Execution is one concrete invocation of a prompt against the LLM provider.
// TemplateID is nil for ad-hoc prompts supplied directly by the caller.
type Execution struct {
	ID             int64             `json:"id" db:"id"`
	TemplateID     *int64            `json:"template_id,omitempty" db:"template_id"`
	GroupID        *int64            `json:"group_id,omitempty" db:"group_id"`
	RenderedPrompt string            `json:"rendered_prompt" db:"rendered_prompt"`
	VariablesUsed  map[string]string `json:"variables_used,omitempty" db:"variables_used"`
	StartDate      *time.Time        `json:"start_date,omitempty" db:"start_date"`
	EndDate        *time.Time        `json:"end_date,omitempty" db:"end_date"`
	MemberFilter   []string          `json:"member_filter,omitempty" db:"member_filter"`
	Response       string            `json:"response,omitempty" db:"response"`
	ModelUsed      string            `json:"model_used" db:"model_used"`
	TokensInput    int               `json:"tokens_input" db:"tokens_input"`
	TokensOutput   int               `json:"tokens_output" db:"tokens_output"`
	LatencyMs      int64             `json:"latency_ms" db:"latency_ms"`
	Status         string            `json:"status" db:"status"`
	ErrorMessage   string            `json:"error_message,omitempty" db:"error_message"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty" db:"completed_at"`
}

// TokensUsed is the combined prompt and completion token count.
func (e *Execution) TokensUsed() int {
	return e.TokensInput + e.TokensOutput
}
