package handlers

import (
	"net/http"
	"time"

	"github.com/promptarena/promptarena/internal/auth"
	"github.com/promptarena/promptarena/internal/models"
)

type AuthHandler struct {
	users  *auth.UserStore
	tokens *auth.TokenIssuer
}

func NewAuthHandler(users *auth.UserStore, tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(user.ID, user.Username, user.IsSuperuser)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeDetail(w, http.StatusUnauthorized, "session required")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeDetail(w, http.StatusUnauthorized, "session required")
		return
	}

	var req changePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !auth.VerifyPassword(u.HashedPassword, req.CurrentPassword) {
		writeDetail(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}
	if err := h.users.UpdatePassword(r.Context(), u.ID, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"detail": "password updated"})
}

// CreateUser is superuser-only, enforced by middleware.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req auth.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Logout is stateless: tokens stay valid until expiry, the client simply
// discards its copy. The endpoint exists so the dashboard flow has an
// explicit transition.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"detail": "logged out"})
}
