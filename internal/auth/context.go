package auth

import (
	"context"

	"github.com/promptarena/promptarena/internal/models"
)

type ctxKey string

const (
	userKey   ctxKey = "user"
	apiKeyKey ctxKey = "apikey"
)

// WithUser marks the request as a dashboard session.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user, or nil for API-key calls.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// WithAPIKey marks the request as a programmatic integration call.
func WithAPIKey(ctx context.Context, k *models.APIKey) context.Context {
	return context.WithValue(ctx, apiKeyKey, k)
}

// APIKeyFromContext returns the presenting key, or nil for session calls.
func APIKeyFromContext(ctx context.Context) *models.APIKey {
	k, _ := ctx.Value(apiKeyKey).(*models.APIKey)
	return k
}

// CallerName names the authenticated principal for audit fields.
func CallerName(ctx context.Context) string {
	if u := UserFromContext(ctx); u != nil {
		return u.Username
	}
	if k := APIKeyFromContext(ctx); k != nil {
		return "apikey:" + k.Prefix
	}
	return ""
}
