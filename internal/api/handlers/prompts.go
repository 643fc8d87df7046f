package handlers

import (
	"net/http"

	"github.com/promptarena/promptarena/internal/llm"
	"github.com/promptarena/promptarena/internal/template"
)

// PromptLibraryHandler serves the builtin template library and variant
// generation.
type PromptLibraryHandler struct {
	gateway llm.Gateway
}

func NewPromptLibraryHandler(gateway llm.Gateway) *PromptLibraryHandler {
	return &PromptLibraryHandler{gateway: gateway}
}

func (h *PromptLibraryHandler) Builtin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": template.AllBuiltins()})
}

func (h *PromptLibraryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req template.GenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := template.Generate(r.Context(), h.gateway, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
