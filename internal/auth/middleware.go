package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/models"
	"github.com/promptarena/promptarena/internal/ratelimit"
)

// Middleware authenticates protected routes. Credentials are checked in a
// fixed order: bearer token first, then the API key header. API-key calls
// additionally pass scope and rate-limit checks.
type Middleware struct {
	tokens       *TokenIssuer
	users        *UserStore
	keys         *APIKeyStore
	limiter      *ratelimit.Limiter
	apiKeyHeader string
}

func NewMiddleware(tokens *TokenIssuer, users *UserStore, keys *APIKeyStore, limiter *ratelimit.Limiter, apiKeyHeader string) *Middleware {
	return &Middleware{
		tokens:       tokens,
		users:        users,
		keys:         keys,
		limiter:      limiter,
		apiKeyHeader: apiKeyHeader,
	}
}

// Authenticate admits requests bearing either credential.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := extractBearerToken(r); token != "" {
			m.serveWithToken(w, r, next, token)
			return
		}
		if secret := r.Header.Get(m.apiKeyHeader); secret != "" {
			m.serveWithAPIKey(w, r, next, secret)
			return
		}
		writeDetail(w, http.StatusUnauthorized, "missing credentials")
	})
}

func (m *Middleware) serveWithToken(w http.ResponseWriter, r *http.Request, next http.Handler, token string) {
	claims, err := m.tokens.Verify(token)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "invalid token")
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "invalid token")
		return
	}

	user, err := m.users.GetByID(r.Context(), userID)
	if err != nil || !user.IsActive {
		writeDetail(w, http.StatusUnauthorized, "user not found or inactive")
		return
	}

	next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
}

func (m *Middleware) serveWithAPIKey(w http.ResponseWriter, r *http.Request, next http.Handler, secret string) {
	key, err := m.keys.Lookup(r.Context(), secret)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "invalid API key")
		return
	}
	if !key.IsActive {
		writeDetail(w, http.StatusUnauthorized, "API key revoked")
		return
	}
	if key.Expired(time.Now()) {
		writeDetail(w, http.StatusUnauthorized, "API key expired")
		return
	}
	if !key.HasScope(requiredScope(r.Method)) {
		writeDetail(w, http.StatusForbidden, "insufficient scope")
		return
	}

	retryAfter, err := m.limiter.Allow(r.Context(), key.ID, key.RateLimit)
	if errors.Is(err, apperr.ErrRateLimited) {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		writeDetail(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	if err != nil {
		writeDetail(w, http.StatusServiceUnavailable, "rate limiter unavailable")
		return
	}

	m.keys.TouchUsage(r.Context(), key.ID)
	next.ServeHTTP(w, r.WithContext(WithAPIKey(r.Context(), key)))
}

// RequireSuperuser restricts a route to dashboard admins.
func (m *Middleware) RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFromContext(r.Context())
		if u == nil || !u.IsSuperuser {
			writeDetail(w, http.StatusForbidden, "superuser required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requiredScope maps HTTP methods to key scopes: reads need read, anything
// mutating needs write.
func requiredScope(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return models.ScopeRead
	default:
		return models.ScopeWrite
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}
