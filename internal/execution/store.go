// Package execution runs rendered prompts through the LLM gateway and keeps
// one durable record per attempt.
package execution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/database"
	"github.com/promptarena/promptarena/internal/models"
)

const executionColumns = `id, template_id, group_id, rendered_prompt, variables_used,
	 start_date, end_date, member_filter, response, model_used,
	 tokens_input, tokens_output, latency_ms, status, error_message,
	 created_at, completed_at`

type Store struct {
	db database.Querier
}

func NewStore(db database.Querier) *Store {
	return &Store{db: db}
}

// Insert persists a finished execution record. The recorder fills every
// field before calling; the row is immutable afterwards.
func (s *Store) Insert(ctx context.Context, e *models.Execution) error {
	varsJSON, _ := json.Marshal(e.VariablesUsed)
	memberJSON, _ := json.Marshal(e.MemberFilter)

	err := s.db.QueryRow(ctx,
		`INSERT INTO prompt_executions
		 (template_id, group_id, rendered_prompt, variables_used, start_date, end_date,
		  member_filter, response, model_used, tokens_input, tokens_output, latency_ms,
		  status, error_message, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, created_at`,
		e.TemplateID, e.GroupID, e.RenderedPrompt, varsJSON, e.StartDate, e.EndDate,
		memberJSON, e.Response, e.ModelUsed, e.TokensInput, e.TokensOutput, e.LatencyMs,
		e.Status, e.ErrorMessage, e.CompletedAt,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*models.Execution, error) {
	e, err := scanExecution(s.db.QueryRow(ctx,
		`SELECT `+executionColumns+` FROM prompt_executions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("execution %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get execution: %w", err)
	}
	return e, nil
}

// GetMany loads the given executions and fails with NotFound when any id is
// missing, so evaluation cohorts never silently shrink.
func (s *Store) GetMany(ctx context.Context, ids []int64) ([]models.Execution, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+executionColumns+` FROM prompt_executions WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("get executions: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	var out []models.Execution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		found[e.ID] = true
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if !found[id] {
			return nil, apperr.NotFoundf("execution %d not found", id)
		}
	}
	return out, nil
}

// ListFilter narrows List. Nil/zero values mean no constraint.
type ListFilter struct {
	TemplateID *int64
	GroupID    *int64
	Status     string
	Limit      int
	Offset     int
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Execution, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.TemplateID != nil {
		add("template_id = $%d", *f.TemplateID)
	}
	if f.GroupID != nil {
		add("group_id = $%d", *f.GroupID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}

	query := `SELECT ` + executionColumns + ` FROM prompt_executions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id DESC"

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var out []models.Execution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func scanExecution(row pgx.Row) (*models.Execution, error) {
	var (
		e                    models.Execution
		varsJSON, memberJSON []byte
		completedAt          *time.Time
	)
	err := row.Scan(
		&e.ID, &e.TemplateID, &e.GroupID, &e.RenderedPrompt, &varsJSON,
		&e.StartDate, &e.EndDate, &memberJSON, &e.Response, &e.ModelUsed,
		&e.TokensInput, &e.TokensOutput, &e.LatencyMs, &e.Status, &e.ErrorMessage,
		&e.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	e.CompletedAt = completedAt
	if len(varsJSON) > 0 {
		if err := json.Unmarshal(varsJSON, &e.VariablesUsed); err != nil {
			return nil, fmt.Errorf("decode variables_used: %w", err)
		}
	}
	if len(memberJSON) > 0 {
		if err := json.Unmarshal(memberJSON, &e.MemberFilter); err != nil {
			return nil, fmt.Errorf("decode member_filter: %w", err)
		}
	}
	return &e, nil
}
