package handlers

import (
	"errors"
	"net/http"

	"github.com/promptarena/promptarena/internal/analysis"
	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/auth"
	"github.com/promptarena/promptarena/internal/group"
	"github.com/promptarena/promptarena/internal/llm"
	"github.com/promptarena/promptarena/internal/models"
)

// IntegrationHandler serves the external-tool endpoints: the browser
// orchestrator's one-shot analyses and the chatlog exporter's batch import.
type IntegrationHandler struct {
	gateway  llm.Gateway
	groups   *group.Store
	analyses *analysis.Service
}

func NewIntegrationHandler(gateway llm.Gateway, groups *group.Store, analyses *analysis.Service) *IntegrationHandler {
	return &IntegrationHandler{gateway: gateway, groups: groups, analyses: analyses}
}

type browserLLMRequest struct {
	TaskType string `json:"task_type"`
	Content  string `json:"content"`
}

func (h *IntegrationHandler) BrowserLLMAnalyze(w http.ResponseWriter, r *http.Request) {
	var req browserLLMRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := analysis.BrowserLLMAnalyze(r.Context(), h.gateway, req.TaskType, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"result":      result.Result,
		"prompt_used": result.PromptUsed,
		"metadata": map[string]any{
			"task_type":     result.TaskType,
			"tokens_input":  result.TokensInput,
			"tokens_output": result.TokensOutput,
			"duration_ms":   result.DurationMs,
		},
	})
}

func (h *IntegrationHandler) BrowserLLMTaskTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"task_types": analysis.BrowserLLMTaskTypes()})
}

type chatlogRequest struct {
	GroupExternalID string                 `json:"group_external_id"`
	GroupName       string                 `json:"group_name"`
	GroupType       models.GroupType       `json:"group_type,omitempty"`
	Platform        string                 `json:"platform,omitempty"`
	Messages        []analysis.ChatMessage `json:"messages"`
	AnalysisType    string                 `json:"analysis_type,omitempty"`
	Style           models.PromptStyle     `json:"style,omitempty"`
}

// ChatlogAnalyze ingests an exported message batch, creating the group on
// first contact, and runs the standard analysis pipeline over it.
func (h *IntegrationHandler) ChatlogAnalyze(w http.ResponseWriter, r *http.Request) {
	var req chatlogRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.GroupExternalID == "" {
		writeDetail(w, http.StatusBadRequest, "group_external_id is required")
		return
	}
	if len(req.Messages) == 0 {
		writeDetail(w, http.StatusBadRequest, "messages is required")
		return
	}

	g, err := h.groups.GetByExternalID(r.Context(), req.GroupExternalID)
	if errors.Is(err, apperr.ErrNotFound) {
		name := req.GroupName
		if name == "" {
			name = req.GroupExternalID
		}
		g, err = h.groups.Create(r.Context(), group.CreateRequest{
			ExternalID:  req.GroupExternalID,
			Name:        name,
			Type:        req.GroupType,
			Description: "imported via chatlog integration",
			ExtraData:   map[string]any{"platform": req.Platform},
		})
	}
	if err != nil {
		writeError(w, err)
		return
	}

	runReq := analysis.Request{
		GroupID:      g.ID,
		ChatContent:  analysis.FormatMessages(req.Messages),
		Style:        req.Style,
		AnalysisType: req.AnalysisType,
		RequestedBy:  auth.CallerName(r.Context()),
	}
	if k := auth.APIKeyFromContext(r.Context()); k != nil {
		runReq.APIKeyID = &k.ID
	}

	result, err := h.analyses.Run(r.Context(), runReq)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"task":       result.Task,
		"summary":    result.Task.Summary,
		"statistics": analysis.Statistics(req.Messages, req.Platform, g.Name),
	})
}
