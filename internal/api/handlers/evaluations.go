package handlers

import (
	"net/http"
	"strconv"

	"github.com/promptarena/promptarena/internal/evaluation"
	"github.com/promptarena/promptarena/internal/models"
)

type EvaluationHandler struct {
	service *evaluation.Service
	store   *evaluation.Store
}

func NewEvaluationHandler(service *evaluation.Service, store *evaluation.Store) *EvaluationHandler {
	return &EvaluationHandler{service: service, store: store}
}

func (h *EvaluationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req evaluation.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ev, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (h *EvaluationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	ev, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (h *EvaluationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	evaluations, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if evaluations == nil {
		evaluations = []models.Evaluation{}
	}
	writeJSON(w, http.StatusOK, evaluations)
}

func (h *EvaluationHandler) Score(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req evaluation.ManualScoreRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ev, err := h.service.ManualScore(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (h *EvaluationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type compareRequest struct {
	TemplateIDs []int64            `json:"template_ids"`
	ChatContent string             `json:"chat_content"`
	GroupID     *int64             `json:"group_id,omitempty"`
	StartDate   *string            `json:"start_date,omitempty"`
	EndDate     *string            `json:"end_date,omitempty"`
	Criteria    map[string]float64 `json:"criteria,omitempty"`
}

// Compare runs every template against the same chat content and auto-scores
// the resulting cohort in one call.
func (h *EvaluationHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
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

	result, err := h.service.Compare(r.Context(), evaluation.CompareRequest{
		TemplateIDs: req.TemplateIDs,
		ChatContent: req.ChatContent,
		GroupID:     req.GroupID,
		StartDate:   startDate,
		EndDate:     endDate,
		Criteria:    req.Criteria,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
