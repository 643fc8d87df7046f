package execution

import (
	"context"
	"log/slog"
	"time"

	"github.com/promptarena/promptarena/internal/llm"
	"github.com/promptarena/promptarena/internal/metrics"
	"github.com/promptarena/promptarena/internal/models"
	"github.com/promptarena/promptarena/internal/template"
)

// Recorder renders a prompt, dispatches it to the gateway, and writes
// exactly one execution row whether the call succeeds or fails.
type Recorder struct {
	store   *Store
	gateway llm.Gateway
}

func NewRecorder(store *Store, gateway llm.Gateway) *Recorder {
	return &Recorder{store: store, gateway: gateway}
}

// Request describes one prompt attempt. Either TemplateID (with
// PromptTemplate loaded by the caller) or a raw PromptTemplate string
// without a template id is accepted.
type Request struct {
	TemplateID     *int64
	GroupID        *int64
	SystemPrompt   string
	PromptTemplate string
	Variables      template.Variables
	Provider       string
	Model          string
	MaxTokens      int
}

// Run renders, executes, and records the attempt. The returned execution is
// always persisted; err is non-nil only for provider failures, in which
// case the execution carries status failed and the classification in
// ErrorMessage. Callers surface the error, not a dropped record.
func (r *Recorder) Run(ctx context.Context, req Request) (*models.Execution, error) {
	vars := req.Variables.Resolve()
	rendered := template.Render(req.PromptTemplate, vars)

	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = template.DefaultSystemPrompt
	}

	exec := &models.Execution{
		TemplateID:     req.TemplateID,
		GroupID:        req.GroupID,
		RenderedPrompt: rendered,
		VariablesUsed:  vars,
		StartDate:      req.Variables.StartDate,
		EndDate:        req.Variables.EndDate,
		MemberFilter:   req.Variables.MemberFilter,
		Status:         models.ExecutionRunning,
	}

	start := time.Now()
	result, callErr := r.gateway.Complete(ctx, llm.CompletionRequest{
		Provider:     req.Provider,
		Model:        req.Model,
		SystemPrompt: systemPrompt,
		UserPrompt:   rendered,
		MaxTokens:    req.MaxTokens,
	})

	now := time.Now()
	exec.LatencyMs = now.Sub(start).Milliseconds()
	exec.CompletedAt = &now

	if callErr != nil {
		exec.Status = models.ExecutionFailed
		exec.ErrorMessage = callErr.Error()
		exec.ModelUsed = req.Model
		if exec.ModelUsed == "" {
			exec.ModelUsed = r.gateway.DefaultModel()
		}
	} else {
		exec.Status = models.ExecutionSucceeded
		exec.Response = result.OutputText
		exec.ModelUsed = result.Model
		exec.TokensInput = result.TokensInput
		exec.TokensOutput = result.TokensOutput
		exec.LatencyMs = result.LatencyMs
	}

	if err := r.store.Insert(ctx, exec); err != nil {
		// The attempt happened but the record could not be written. This is
		// a storage failure, worse than a provider failure; report it.
		slog.Error("execution record lost", "error", err, "status", exec.Status)
		return nil, err
	}

	metrics.ExecutionsTotal.WithLabelValues(exec.Status).Inc()
	slog.Info("execution recorded",
		"execution_id", exec.ID,
		"status", exec.Status,
		"model", exec.ModelUsed,
		"tokens", exec.TokensUsed(),
		"latency_ms", exec.LatencyMs,
	)

	return exec, callErr
}
