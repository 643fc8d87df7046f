package models

import "time"

// API key scopes. Read covers list/get operations, write covers anything
// that creates or mutates state.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

// APIKey is a programmatic credential. The full secret is returned exactly
// once at creation time; only the sha256 hash and a short display prefix
// are persisted. Keys are revoked by flipping IsActive, never deleted.
type APIKey struct {
	ID              int64      `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	KeyHash         string     `json:"-" db:"key_hash"`
	Prefix          string     `json:"prefix" db:"prefix"`
	Scopes          []string   `json:"scopes" db:"scopes"`
	RateLimit       int        `json:"rate_limit" db:"rate_limit"`
	MonthlyLimit    *int       `json:"monthly_limit,omitempty" db:"monthly_limit"`
	IntegrationType string     `json:"integration_type,omitempty" db:"integration_type"`
	WebhookURL      string     `json:"webhook_url,omitempty" db:"webhook_url"`
	TotalRequests   int64      `json:"total_requests" db:"total_requests"`
	LastUsedAt      *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// HasScope reports whether the key grants the named scope.
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Expired reports whether the key has an expiry in the past.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}
