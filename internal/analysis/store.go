// Package analysis runs chat-group analyses for integration callers and
// keeps an audit row per run.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/database"
	"github.com/promptarena/promptarena/internal/models"
)

const taskColumns = `id, group_id, template_id, execution_id, analysis_type,
	 start_date, end_date, member_filter, status, summary, error_message,
	 requested_by, api_key_id, created_at, completed_at`

type Store struct {
	db database.Querier
}

func NewStore(db database.Querier) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, t *models.AnalysisTask) error {
	memberJSON, _ := json.Marshal(t.MemberFilter)

	err := s.db.QueryRow(ctx,
		`INSERT INTO analysis_tasks
		 (group_id, template_id, analysis_type, start_date, end_date, member_filter,
		  status, requested_by, api_key_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		t.GroupID, t.TemplateID, t.AnalysisType, t.StartDate, t.EndDate, memberJSON,
		t.Status, t.RequestedBy, t.APIKeyID,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert analysis task: %w", err)
	}
	return nil
}

// Finish records the terminal state of a task.
func (s *Store) Finish(ctx context.Context, t *models.AnalysisTask) error {
	now := time.Now()
	t.CompletedAt = &now

	_, err := s.db.Exec(ctx,
		`UPDATE analysis_tasks
		 SET execution_id = $1, status = $2, summary = $3, error_message = $4, completed_at = $5
		 WHERE id = $6`,
		t.ExecutionID, t.Status, t.Summary, t.ErrorMessage, t.CompletedAt, t.ID)
	if err != nil {
		return fmt.Errorf("finish analysis task: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*models.AnalysisTask, error) {
	t, err := scanTask(s.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM analysis_tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("analysis task %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis task: %w", err)
	}
	return t, nil
}

func (s *Store) ListByGroup(ctx context.Context, groupID int64, limit int) ([]models.AnalysisTask, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+taskColumns+` FROM analysis_tasks
		 WHERE group_id = $1 ORDER BY id DESC LIMIT $2`, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("list analysis tasks: %w", err)
	}
	defer rows.Close()

	var out []models.AnalysisTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis task: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTask(row pgx.Row) (*models.AnalysisTask, error) {
	var (
		t          models.AnalysisTask
		memberJSON []byte
	)
	err := row.Scan(
		&t.ID, &t.GroupID, &t.TemplateID, &t.ExecutionID, &t.AnalysisType,
		&t.StartDate, &t.EndDate, &memberJSON, &t.Status, &t.Summary, &t.ErrorMessage,
		&t.RequestedBy, &t.APIKeyID, &t.CreatedAt, &t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(memberJSON) > 0 {
		if err := json.Unmarshal(memberJSON, &t.MemberFilter); err != nil {
			return nil, fmt.Errorf("decode member_filter: %w", err)
		}
	}
	return &t, nil
}
