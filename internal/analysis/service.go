package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/execution"
	"github.com/promptarena/promptarena/internal/group"
	"github.com/promptarena/promptarena/internal/models"
	"github.com/promptarena/promptarena/internal/template"
)

// Service runs a full group analysis: template selection, substitution,
// execution, and the audit task row.
type Service struct {
	tasks     *Store
	groups    *group.Store
	templates *template.Store
	recorder  *execution.Recorder
}

func NewService(tasks *Store, groups *group.Store, templates *template.Store, recorder *execution.Recorder) *Service {
	return &Service{
		tasks:     tasks,
		groups:    groups,
		templates: templates,
		recorder:  recorder,
	}
}

type Request struct {
	GroupID         int64                  `json:"group_id"`
	TemplateID      *int64                 `json:"template_id,omitempty"`
	ChatContent     string                 `json:"chat_content"`
	TimeGranularity models.TimeGranularity `json:"time_granularity,omitempty"`
	Style           models.PromptStyle     `json:"style,omitempty"`
	StartDate       *time.Time             `json:"start_date,omitempty"`
	EndDate         *time.Time             `json:"end_date,omitempty"`
	MemberFilter    []string               `json:"member_filter,omitempty"`
	AnalysisType    string                 `json:"analysis_type,omitempty"`
	RequestedBy     string                 `json:"-"`
	APIKeyID        *int64                 `json:"-"`
}

type Result struct {
	Task      *models.AnalysisTask `json:"task"`
	Execution *models.Execution    `json:"execution,omitempty"`
}

// Run analyzes one group's chat content. Template resolution order: an
// explicit template id, then the group's custom template, then the built-in
// library for the group's type. The task row always reaches a terminal
// state, mirroring the execution record underneath it.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.ChatContent == "" {
		return nil, apperr.Validationf("chat_content is required")
	}

	g, err := s.groups.GetByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	if req.AnalysisType == "" {
		req.AnalysisType = "summary"
	}
	if req.TimeGranularity == "" {
		req.TimeGranularity = models.GranularityDaily
	}
	if req.Style == "" {
		req.Style = models.StyleAnalytical
	}

	systemPrompt, promptTemplate, templateID, err := s.resolveTemplate(ctx, g, req)
	if err != nil {
		return nil, err
	}

	task := &models.AnalysisTask{
		GroupID:      &g.ID,
		TemplateID:   templateID,
		AnalysisType: req.AnalysisType,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		MemberFilter: req.MemberFilter,
		Status:       models.AnalysisRunning,
		RequestedBy:  req.RequestedBy,
		APIKeyID:     req.APIKeyID,
	}
	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, err
	}

	exec, runErr := s.recorder.Run(ctx, execution.Request{
		TemplateID:     templateID,
		GroupID:        &g.ID,
		SystemPrompt:   systemPrompt,
		PromptTemplate: promptTemplate,
		Variables: template.Variables{
			ChatContent:  req.ChatContent,
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			MemberFilter: req.MemberFilter,
		},
	})

	if exec != nil {
		task.ExecutionID = &exec.ID
	}
	if runErr != nil {
		task.Status = models.AnalysisFailed
		task.ErrorMessage = runErr.Error()
	} else {
		task.Status = models.AnalysisCompleted
		task.Summary = exec.Response
	}

	if err := s.tasks.Finish(ctx, task); err != nil {
		return nil, err
	}

	slog.Info("analysis finished",
		"task_id", task.ID,
		"group_id", g.ID,
		"status", task.Status,
	)

	if runErr != nil {
		return &Result{Task: task, Execution: exec}, runErr
	}
	return &Result{Task: task, Execution: exec}, nil
}

func (s *Service) resolveTemplate(ctx context.Context, g *models.Group, req Request) (systemPrompt, promptTemplate string, templateID *int64, err error) {
	if req.TemplateID != nil {
		tpl, err := s.templates.GetByID(ctx, *req.TemplateID)
		if err != nil {
			return "", "", nil, err
		}
		return tpl.SystemPrompt, tpl.UserPromptTemplate, &tpl.ID, nil
	}

	if g.CustomPromptTemplate != "" {
		return template.DefaultSystemPrompt, g.CustomPromptTemplate, nil, nil
	}

	builtin, ok := template.LookupBuiltin(g.Type, req.TimeGranularity, req.Style)
	if !ok {
		return "", "", nil, fmt.Errorf(
			"no template for group type %q at granularity %q: %w",
			g.Type, req.TimeGranularity, apperr.ErrNotFound)
	}
	return template.DefaultSystemPrompt, builtin, nil, nil
}
