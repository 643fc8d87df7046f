package models

import "time"

// ScoreMatrix maps execution ID -> criterion name -> score.
type ScoreMatrix map[int64]map[string]float64

// Evaluation is a scored comparison across a cohort of executions against
// weighted criteria. Invariants: every entry in Scores carries exactly the
// criterion keys of Criteria, and WinnerExecutionID, when set, is a member
// of ExecutionIDs.
type Evaluation struct {
	ID                int64              `json:"id" db:"id"`
	Name              string             `json:"name" db:"name"`
	Description       string             `json:"description,omitempty" db:"description"`
	ExecutionIDs      []int64            `json:"execution_ids" db:"execution_ids"`
	Criteria          map[string]float64 `json:"criteria" db:"criteria"`
	Scores            ScoreMatrix        `json:"scores" db:"scores"`
	WinnerExecutionID *int64             `json:"winner_execution_id,omitempty" db:"winner_execution_id"`
	EvaluatorNotes    string             `json:"evaluator_notes,omitempty" db:"evaluator_notes"`
	AutoEvaluated     bool               `json:"auto_evaluated" db:"auto_evaluated"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
}

// HasExecution reports whether id belongs to the evaluation's cohort.
func (ev *Evaluation) HasExecution(id int64) bool {
	for _, e := range ev.ExecutionIDs {
		if e == id {
			return true
		}
	}
	return false
}
