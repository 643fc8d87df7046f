package handlers

import (
	"net/http"
	"time"

	"github.com/promptarena/promptarena/internal/auth"
	"github.com/promptarena/promptarena/internal/models"
)

type APIKeyHandler struct {
	keys *auth.APIKeyStore
}

func NewAPIKeyHandler(keys *auth.APIKeyStore) *APIKeyHandler {
	return &APIKeyHandler{keys: keys}
}

type createKeyResponse struct {
	APIKey *models.APIKey `json:"api_key"`
	Key    string         `json:"key"`
}

// Create mints a new key. The plaintext secret appears in this response and
// nowhere else.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req auth.CreateKeyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	key, secret, err := h.keys.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createKeyResponse{APIKey: key, Key: secret})
}

func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if keys == nil {
		keys = []models.APIKey{}
	}
	writeJSON(w, http.StatusOK, keys)
}

func (h *APIKeyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	key, err := h.keys.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, key)
}

func (h *APIKeyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req auth.UpdateKeyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	key, err := h.keys.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, key)
}

func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.keys.Revoke(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type validateKeyRequest struct {
	Key string `json:"key"`
}

// Validate checks a presented secret without serving a request with it. The
// dashboard uses this to verify pasted keys.
func (h *APIKeyHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateKeyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Key == "" {
		writeDetail(w, http.StatusBadRequest, "key is required")
		return
	}

	key, err := h.keys.Lookup(r.Context(), req.Key)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false})
		return
	}

	valid := key.IsActive && !key.Expired(time.Now())
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":  valid,
		"name":   key.Name,
		"prefix": key.Prefix,
		"scopes": key.Scopes,
	})
}
