package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/execution"
	"github.com/promptarena/promptarena/internal/metrics"
	"github.com/promptarena/promptarena/internal/models"
	"github.com/promptarena/promptarena/internal/template"
)

// Service coordinates evaluation creation, scoring, and the compare
// convenience workflow.
type Service struct {
	store      *Store
	executions *execution.Store
	templates  *template.Store
	recorder   *execution.Recorder
	judge      *Judge
}

func NewService(store *Store, executions *execution.Store, templates *template.Store, recorder *execution.Recorder, judge *Judge) *Service {
	return &Service{
		store:      store,
		executions: executions,
		templates:  templates,
		recorder:   recorder,
		judge:      judge,
	}
}

type CreateRequest struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	ExecutionIDs []int64            `json:"execution_ids"`
	Criteria     map[string]float64 `json:"criteria,omitempty"`
	AutoEvaluate bool               `json:"auto_evaluate"`
}

// Create builds an evaluation over an existing cohort. With AutoEvaluate
// set, the judge scores every execution before anything is written; a
// scoring failure persists nothing.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Evaluation, error) {
	if req.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if len(req.ExecutionIDs) < 2 {
		return nil, apperr.ErrInsufficientExecutions
	}

	criteria := req.Criteria
	if len(criteria) == 0 {
		criteria = DefaultCriteria()
	}
	if err := ValidateCriteria(criteria); err != nil {
		return nil, err
	}

	executions, err := s.executions.GetMany(ctx, req.ExecutionIDs)
	if err != nil {
		return nil, err
	}

	ev := &models.Evaluation{
		Name:          req.Name,
		Description:   req.Description,
		ExecutionIDs:  req.ExecutionIDs,
		Criteria:      criteria,
		Scores:        models.ScoreMatrix{},
		AutoEvaluated: req.AutoEvaluate,
	}

	if req.AutoEvaluate {
		matrix, notes, err := s.judge.ScoreAll(ctx, executions, criteria)
		if err != nil {
			return nil, err
		}
		ev.Scores = matrix
		ev.EvaluatorNotes = notes
		if winner, ok := Winner(matrix, criteria); ok {
			ev.WinnerExecutionID = &winner
		}
	}

	if err := s.store.Insert(ctx, ev); err != nil {
		return nil, err
	}

	mode := "manual"
	if req.AutoEvaluate {
		mode = "auto"
	}
	metrics.EvaluationsTotal.WithLabelValues(mode).Inc()
	slog.Info("evaluation created",
		"evaluation_id", ev.ID,
		"executions", len(ev.ExecutionIDs),
		"auto_evaluated", ev.AutoEvaluated,
	)
	return ev, nil
}

type ManualScoreRequest struct {
	ExecutionID int64              `json:"execution_id"`
	Scores      map[string]float64 `json:"scores"`
}

// ManualScore records a hand-entered score row for one execution of the
// cohort and recomputes the winner.
func (s *Service) ManualScore(ctx context.Context, evaluationID int64, req ManualScoreRequest) (*models.Evaluation, error) {
	ev, err := s.store.GetByID(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if !ev.HasExecution(req.ExecutionID) {
		return nil, apperr.Validationf("execution %d is not part of evaluation %d", req.ExecutionID, evaluationID)
	}
	if len(req.Scores) == 0 {
		return nil, apperr.Validationf("scores are required")
	}
	for name := range req.Scores {
		if _, ok := ev.Criteria[name]; !ok {
			return nil, apperr.Validationf("unknown criterion %q", name)
		}
	}

	if ev.Scores == nil {
		ev.Scores = models.ScoreMatrix{}
	}
	ev.Scores[req.ExecutionID] = req.Scores

	if winner, ok := Winner(ev.Scores, ev.Criteria); ok {
		ev.WinnerExecutionID = &winner
	}

	if err := s.store.UpdateScores(ctx, ev); err != nil {
		return nil, err
	}

	slog.Info("manual score recorded",
		"evaluation_id", ev.ID,
		"execution_id", req.ExecutionID,
	)
	return ev, nil
}

type CompareRequest struct {
	TemplateIDs []int64            `json:"template_ids"`
	ChatContent string             `json:"chat_content"`
	GroupID     *int64             `json:"group_id,omitempty"`
	StartDate   *time.Time         `json:"start_date,omitempty"`
	EndDate     *time.Time         `json:"end_date,omitempty"`
	Criteria    map[string]float64 `json:"criteria,omitempty"`
}

type CompareResult struct {
	Executions []models.Execution `json:"executions"`
	Evaluation *models.Evaluation `json:"evaluation"`
}

// Compare runs each template against the same chat content, then
// auto-scores the resulting cohort in one evaluation. A provider failure on
// any execution aborts the comparison; the failed attempt stays recorded.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (*CompareResult, error) {
	if len(req.TemplateIDs) < 2 {
		return nil, apperr.ErrInsufficientExecutions
	}
	if req.ChatContent == "" {
		return nil, apperr.Validationf("chat_content is required")
	}

	var executions []models.Execution
	for _, templateID := range req.TemplateIDs {
		tpl, err := s.templates.GetByID(ctx, templateID)
		if err != nil {
			return nil, err
		}

		id := templateID
		exec, err := s.recorder.Run(ctx, execution.Request{
			TemplateID:     &id,
			GroupID:        req.GroupID,
			SystemPrompt:   tpl.SystemPrompt,
			PromptTemplate: tpl.UserPromptTemplate,
			Variables: template.Variables{
				ChatContent: req.ChatContent,
				StartDate:   req.StartDate,
				EndDate:     req.EndDate,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", templateID, err)
		}
		executions = append(executions, *exec)
	}

	ids := make([]int64, len(executions))
	for i, e := range executions {
		ids[i] = e.ID
	}

	ev, err := s.Create(ctx, CreateRequest{
		Name:         "Prompt Comparison " + time.Now().UTC().Format("20060102_150405"),
		ExecutionIDs: ids,
		Criteria:     req.Criteria,
		AutoEvaluate: true,
	})
	if err != nil {
		return nil, err
	}

	return &CompareResult{Executions: executions, Evaluation: ev}, nil
}
