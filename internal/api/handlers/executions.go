package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/promptarena/promptarena/internal/execution"
	"github.com/promptarena/promptarena/internal/models"
	"github.com/promptarena/promptarena/internal/template"
)

type ExecutionHandler struct {
	store     *execution.Store
	recorder  *execution.Recorder
	templates *template.Store
}

func NewExecutionHandler(store *execution.Store, recorder *execution.Recorder, templates *template.Store) *ExecutionHandler {
	return &ExecutionHandler{store: store, recorder: recorder, templates: templates}
}

type executeRequest struct {
	TemplateID         *int64            `json:"template_id,omitempty"`
	SystemPrompt       string            `json:"system_prompt,omitempty"`
	UserPromptTemplate string            `json:"user_prompt_template,omitempty"`
	GroupID            *int64            `json:"group_id,omitempty"`
	ChatContent        string            `json:"chat_content,omitempty"`
	Variables          map[string]string `json:"variables,omitempty"`
	StartDate          *string           `json:"start_date,omitempty"`
	EndDate            *string           `json:"end_date,omitempty"`
	MemberFilter       []string          `json:"member_filter,omitempty"`
	Provider           string            `json:"provider,omitempty"`
	Model              string            `json:"model,omitempty"`
	MaxTokens          int               `json:"max_tokens,omitempty"`
}

// Execute renders and runs a prompt, from a stored template or an ad-hoc
// prompt pair. The attempt is recorded either way; provider failures
// surface as an error after the failed row is written.
func (h *ExecutionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	runReq := execution.Request{
		GroupID:   req.GroupID,
		Provider:  req.Provider,
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
	}

	switch {
	case req.TemplateID != nil:
		tpl, err := h.templates.GetByID(r.Context(), *req.TemplateID)
		if err != nil {
			writeError(w, err)
			return
		}
		runReq.TemplateID = &tpl.ID
		runReq.SystemPrompt = tpl.SystemPrompt
		runReq.PromptTemplate = tpl.UserPromptTemplate
	case req.UserPromptTemplate != "":
		runReq.SystemPrompt = req.SystemPrompt
		runReq.PromptTemplate = req.UserPromptTemplate
	default:
		writeDetail(w, http.StatusBadRequest, "template_id or user_prompt_template is required")
		return
	}

	startDate, ok := parseDate(w, req.StartDate, "start_date")
	if !ok {
		return
	}
	endDate, ok := parseDate(w, req.EndDate, "end_date")
	if !ok {
		return
	}

	runReq.Variables = template.Variables{
		ChatContent:  req.ChatContent,
		StartDate:    startDate,
		EndDate:      endDate,
		MemberFilter: req.MemberFilter,
		Extra:        req.Variables,
	}

	exec, err := h.recorder.Run(r.Context(), runReq)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, exec)
}

func (h *ExecutionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	exec, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exec)
}

func (h *ExecutionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := execution.ListFilter{Status: q.Get("status")}

	if v := q.Get("template_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid template_id")
			return
		}
		filter.TemplateID = &id
	}
	if v := q.Get("group_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid group_id")
			return
		}
		filter.GroupID = &id
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	executions, err := h.store.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if executions == nil {
		executions = []models.Execution{}
	}
	writeJSON(w, http.StatusOK, executions)
}

// parseDate accepts ISO-8601 dates with or without a time component.
func parseDate(w http.ResponseWriter, s *string, field string) (*time.Time, bool) {
	if s == nil || *s == "" {
		return nil, true
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t, true
		}
	}
	writeDetail(w, http.StatusBadRequest, "invalid "+field+": expected ISO-8601")
	return nil, false
}
