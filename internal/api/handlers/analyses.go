package handlers

import (
	"net/http"
	"strconv"

	"github.com/promptarena/promptarena/internal/analysis"
	"github.com/promptarena/promptarena/internal/auth"
	"github.com/promptarena/promptarena/internal/models"
)

type AnalysisHandler struct {
	service *analysis.Service
	tasks   *analysis.Store
}

func NewAnalysisHandler(service *analysis.Service, tasks *analysis.Store) *AnalysisHandler {
	return &AnalysisHandler{service: service, tasks: tasks}
}

type analyzeRequest struct {
	GroupID         int64                  `json:"group_id"`
	TemplateID      *int64                 `json:"template_id,omitempty"`
	ChatContent     string                 `json:"chat_content"`
	TimeGranularity models.TimeGranularity `json:"time_granularity,omitempty"`
	Style           models.PromptStyle     `json:"style,omitempty"`
	StartDate       *string                `json:"start_date,omitempty"`
	EndDate         *string                `json:"end_date,omitempty"`
	MemberFilter    []string               `json:"member_filter,omitempty"`
	AnalysisType    string                 `json:"analysis_type,omitempty"`
}

func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
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

	runReq := analysis.Request{
		GroupID:         req.GroupID,
		TemplateID:      req.TemplateID,
		ChatContent:     req.ChatContent,
		TimeGranularity: req.TimeGranularity,
		Style:           req.Style,
		StartDate:       startDate,
		EndDate:         endDate,
		MemberFilter:    req.MemberFilter,
		AnalysisType:    req.AnalysisType,
		RequestedBy:     auth.CallerName(r.Context()),
	}
	if k := auth.APIKeyFromContext(r.Context()); k != nil {
		runReq.APIKeyID = &k.ID
	}

	result, err := h.service.Run(r.Context(), runReq)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *AnalysisHandler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	tasks, err := h.tasks.ListByGroup(r.Context(), id, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.AnalysisTask{}
	}
	writeJSON(w, http.StatusOK, tasks)
}
