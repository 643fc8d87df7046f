package handlers

import (
	"net/http"

	"github.com/promptarena/promptarena/internal/models"
	"github.com/promptarena/promptarena/internal/template"
)

type TemplateHandler struct {
	store *template.Store
}

func NewTemplateHandler(store *template.Store) *TemplateHandler {
	return &TemplateHandler{store: store}
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req template.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tpl, err := h.store.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	tpl, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := template.ListFilter{
		GroupType:       models.GroupType(q.Get("group_type")),
		TimeGranularity: models.TimeGranularity(q.Get("time_granularity")),
		Style:           models.PromptStyle(q.Get("style")),
		ActiveOnly:      q.Get("include_inactive") == "",
	}

	templates, err := h.store.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if templates == nil {
		templates = []models.PromptTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req template.UpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tpl, err := h.store.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

type variantsRequest struct {
	GroupType       models.GroupType       `json:"group_type"`
	TimeGranularity models.TimeGranularity `json:"time_granularity"`
	Styles          []models.PromptStyle   `json:"styles,omitempty"`
}

// Variants returns the built-in library entries for a classification, one
// per requested style.
func (h *TemplateHandler) Variants(w http.ResponseWriter, r *http.Request) {
	var req variantsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !models.ValidGroupType(req.GroupType) {
		writeDetail(w, http.StatusBadRequest, "unknown group_type")
		return
	}
	if len(req.Styles) == 0 {
		req.Styles = []models.PromptStyle{
			models.StyleAnalytical, models.StyleSummary, models.StyleInsight,
		}
	}

	variants := template.ListBuiltins(req.GroupType, req.TimeGranularity, req.Styles)
	if variants == nil {
		variants = []template.BuiltinVariant{}
	}
	writeJSON(w, http.StatusOK, variants)
}
