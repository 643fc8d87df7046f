package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/database"
	"github.com/promptarena/promptarena/internal/models"
)

const apiKeyColumns = `id, name, key_hash, prefix, scopes, rate_limit, monthly_limit,
	 integration_type, webhook_url, total_requests, last_used_at, is_active,
	 expires_at, created_at, updated_at`

// GenerateKey mints a fresh API key secret. The plaintext is shown to the
// caller exactly once; only the hash and the display prefix are stored.
func GenerateKey() (secret, prefix, hash string) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // the OS entropy source is gone; nothing sensible to do
	}
	secret = "pp_" + base64.RawURLEncoding.EncodeToString(buf)
	prefix = secret[:10]
	hash = HashKey(secret)
	return secret, prefix, hash
}

// HashKey is the storage form of an API key secret.
func HashKey(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(h[:])
}

// APIKeyStore persists programmatic credentials.
type APIKeyStore struct {
	db database.Querier
}

func NewAPIKeyStore(db database.Querier) *APIKeyStore {
	return &APIKeyStore{db: db}
}

type CreateKeyRequest struct {
	Name            string     `json:"name"`
	Scopes          []string   `json:"scopes,omitempty"`
	RateLimit       int        `json:"rate_limit,omitempty"`
	MonthlyLimit    *int       `json:"monthly_limit,omitempty"`
	IntegrationType string     `json:"integration_type,omitempty"`
	WebhookURL      string     `json:"webhook_url,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// Create mints and stores a key, returning the record plus the one-shot
// plaintext secret.
func (s *APIKeyStore) Create(ctx context.Context, req CreateKeyRequest) (*models.APIKey, string, error) {
	if req.Name == "" {
		return nil, "", apperr.Validationf("name is required")
	}
	if req.RateLimit < 0 {
		return nil, "", apperr.Validationf("rate_limit must be non-negative")
	}
	if req.RateLimit == 0 {
		req.RateLimit = 1000
	}
	if len(req.Scopes) == 0 {
		req.Scopes = []string{models.ScopeRead}
	}
	for _, scope := range req.Scopes {
		if scope != models.ScopeRead && scope != models.ScopeWrite {
			return nil, "", apperr.Validationf("unknown scope %q", scope)
		}
	}

	secret, prefix, hash := GenerateKey()
	scopesJSON, _ := json.Marshal(req.Scopes)

	k, err := scanAPIKey(s.db.QueryRow(ctx,
		`INSERT INTO api_keys
		 (name, key_hash, prefix, scopes, rate_limit, monthly_limit, integration_type,
		  webhook_url, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+apiKeyColumns,
		req.Name, hash, prefix, scopesJSON, req.RateLimit, req.MonthlyLimit,
		req.IntegrationType, req.WebhookURL, req.ExpiresAt,
	))
	if err != nil {
		return nil, "", fmt.Errorf("insert api key: %w", err)
	}

	slog.Info("api key created", "key_id", k.ID, "name", k.Name, "prefix", k.Prefix)
	return k, secret, nil
}

// Lookup resolves a presented secret to its key record, or Unauthorized.
func (s *APIKeyStore) Lookup(ctx context.Context, secret string) (*models.APIKey, error) {
	k, err := scanAPIKey(s.db.QueryRow(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE key_hash = $1`, HashKey(secret)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: invalid API key", apperr.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup api key: %w", err)
	}
	return k, nil
}

func (s *APIKeyStore) GetByID(ctx context.Context, id int64) (*models.APIKey, error) {
	k, err := scanAPIKey(s.db.QueryRow(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("api key %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get api key: %w", err)
	}
	return k, nil
}

func (s *APIKeyStore) List(ctx context.Context) ([]models.APIKey, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var out []models.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		out = append(out, *k)
	}
	return out, rows.Err()
}

type UpdateKeyRequest struct {
	Name       *string  `json:"name,omitempty"`
	Scopes     []string `json:"scopes,omitempty"`
	RateLimit  *int     `json:"rate_limit,omitempty"`
	WebhookURL *string  `json:"webhook_url,omitempty"`
	IsActive   *bool    `json:"is_active,omitempty"`
}

// Update changes a key's metadata. The secret and hash never change; callers
// needing a new secret create a new key.
func (s *APIKeyStore) Update(ctx context.Context, id int64, req UpdateKeyRequest) (*models.APIKey, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperr.Validationf("name cannot be empty")
		}
		set("name", *req.Name)
	}
	if req.Scopes != nil {
		for _, scope := range req.Scopes {
			if scope != models.ScopeRead && scope != models.ScopeWrite {
				return nil, apperr.Validationf("unknown scope %q", scope)
			}
		}
		scopesJSON, _ := json.Marshal(req.Scopes)
		set("scopes", scopesJSON)
	}
	if req.RateLimit != nil {
		if *req.RateLimit < 0 {
			return nil, apperr.Validationf("rate_limit must be non-negative")
		}
		set("rate_limit", *req.RateLimit)
	}
	if req.WebhookURL != nil {
		set("webhook_url", *req.WebhookURL)
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}

	if len(sets) == 0 {
		return nil, apperr.Validationf("no fields to update")
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE api_keys SET %s, updated_at = now() WHERE id = $%d RETURNING `+apiKeyColumns,
		strings.Join(sets, ", "), len(args))

	k, err := scanAPIKey(s.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("api key %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update api key: %w", err)
	}
	return k, nil
}

// Revoke deactivates a key. The row stays for audit.
func (s *APIKeyStore) Revoke(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE api_keys SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("api key %d not found", id)
	}

	slog.Info("api key revoked", "key_id", id)
	return nil
}

// TouchUsage bumps the usage counter and last-used timestamp. Best effort;
// failures do not fail the request being served.
func (s *APIKeyStore) TouchUsage(ctx context.Context, id int64) {
	_, err := s.db.Exec(ctx,
		`UPDATE api_keys SET total_requests = total_requests + 1, last_used_at = now()
		 WHERE id = $1`, id)
	if err != nil {
		slog.Warn("api key usage update failed", "key_id", id, "error", err)
	}
}

func scanAPIKey(row pgx.Row) (*models.APIKey, error) {
	var (
		k          models.APIKey
		scopesJSON []byte
	)
	err := row.Scan(
		&k.ID, &k.Name, &k.KeyHash, &k.Prefix, &scopesJSON, &k.RateLimit, &k.MonthlyLimit,
		&k.IntegrationType, &k.WebhookURL, &k.TotalRequests, &k.LastUsedAt, &k.IsActive,
		&k.ExpiresAt, &k.CreatedAt, &k.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(scopesJSON, &k.Scopes); err != nil {
		return nil, fmt.Errorf("decode scopes: %w", err)
	}
	return &k, nil
}
