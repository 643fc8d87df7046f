package handlers

import (
	"net/http"
	"strconv"

	"github.com/promptarena/promptarena/internal/group"
	"github.com/promptarena/promptarena/internal/models"
)

type GroupHandler struct {
	store *group.Store
}

func NewGroupHandler(store *group.Store) *GroupHandler {
	return &GroupHandler{store: store}
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req group.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	g, err := h.store.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	g, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	groups, err := h.store.List(r.Context(), group.ListFilter{
		Type:       models.GroupType(q.Get("type")),
		Search:     q.Get("search"),
		ActiveOnly: q.Get("include_inactive") == "",
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req group.UpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	g, err := h.store.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Types lists the valid group types for dashboard dropdowns.
func (h *GroupHandler) Types(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"types": models.GroupTypes()})
}
