package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/database"
	"github.com/promptarena/promptarena/internal/models"
)

const evaluationColumns = `id, name, description, execution_ids, criteria, scores,
	 winner_execution_id, evaluator_notes, auto_evaluated, created_at`

type Store struct {
	db database.Querier
}

func NewStore(db database.Querier) *Store {
	return &Store{db: db}
}

// Insert writes a fully-formed evaluation. Scores and winner are already
// decided; nothing is persisted for evaluations that failed scoring.
func (s *Store) Insert(ctx context.Context, ev *models.Evaluation) error {
	idsJSON, _ := json.Marshal(ev.ExecutionIDs)
	criteriaJSON, _ := json.Marshal(ev.Criteria)
	scoresJSON, _ := json.Marshal(ev.Scores)

	err := s.db.QueryRow(ctx,
		`INSERT INTO prompt_evaluations
		 (name, description, execution_ids, criteria, scores, winner_execution_id,
		  evaluator_notes, auto_evaluated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		ev.Name, ev.Description, idsJSON, criteriaJSON, scoresJSON,
		ev.WinnerExecutionID, ev.EvaluatorNotes, ev.AutoEvaluated,
	).Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*models.Evaluation, error) {
	ev, err := scanEvaluation(s.db.QueryRow(ctx,
		`SELECT `+evaluationColumns+` FROM prompt_evaluations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("evaluation %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get evaluation: %w", err)
	}
	return ev, nil
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]models.Evaluation, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+evaluationColumns+` FROM prompt_evaluations
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var out []models.Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

// UpdateScores replaces the score matrix, winner, and notes after a manual
// scoring pass.
func (s *Store) UpdateScores(ctx context.Context, ev *models.Evaluation) error {
	scoresJSON, _ := json.Marshal(ev.Scores)

	tag, err := s.db.Exec(ctx,
		`UPDATE prompt_evaluations
		 SET scores = $1, winner_execution_id = $2, evaluator_notes = $3
		 WHERE id = $4`,
		scoresJSON, ev.WinnerExecutionID, ev.EvaluatorNotes, ev.ID)
	if err != nil {
		return fmt.Errorf("update evaluation scores: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("evaluation %d not found", ev.ID)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM prompt_evaluations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete evaluation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("evaluation %d not found", id)
	}
	return nil
}

func scanEvaluation(row pgx.Row) (*models.Evaluation, error) {
	var (
		ev                               models.Evaluation
		idsJSON, criteriaJSON, scoreJSON []byte
	)
	err := row.Scan(
		&ev.ID, &ev.Name, &ev.Description, &idsJSON, &criteriaJSON, &scoreJSON,
		&ev.WinnerExecutionID, &ev.EvaluatorNotes, &ev.AutoEvaluated, &ev.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(idsJSON, &ev.ExecutionIDs); err != nil {
		return nil, fmt.Errorf("decode execution_ids: %w", err)
	}
	if err := json.Unmarshal(criteriaJSON, &ev.Criteria); err != nil {
		return nil, fmt.Errorf("decode criteria: %w", err)
	}
	if err := json.Unmarshal(scoreJSON, &ev.Scores); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}
	return &ev, nil
}
