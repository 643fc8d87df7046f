package models

import "time"

// Analysis task status values. Analysis runs synchronously inside the
// request; the task row is an audit record of the run, not a queue entry.
const (
	AnalysisPending   = "pending"
	AnalysisRunning   = "running"
	AnalysisCompleted = "completed"
	AnalysisFailed    = "failed"
)

// AnalysisTask records one integration-driven analysis run and its outcome.
type AnalysisTask struct {
	ID           int64      `json:"id" db:"id"`
	GroupID      *int64     `json:"group_id,omitempty" db:"group_id"`
	TemplateID   *int64     `json:"template_id,omitempty" db:"template_id"`
	ExecutionID  *int64     `json:"execution_id,omitempty" db:"execution_id"`
	AnalysisType string     `json:"analysis_type" db:"analysis_type"`
	StartDate    *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty" db:"end_date"`
	MemberFilter []string   `json:"member_filter,omitempty" db:"member_filter"`
	Status       string     `json:"status" db:"status"`
	Summary      string     `json:"summary,omitempty" db:"summary"`
	ErrorMessage string     `json:"error_message,omitempty" db:"error_message"`
	RequestedBy  string     `json:"requested_by,omitempty" db:"requested_by"`
	APIKeyID     *int64     `json:"api_key_id,omitempty" db:"api_key_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
