package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/models"
)

func TestGenerateKey(t *testing.T) {
	secret, prefix, hash := GenerateKey()

	assert.True(t, strings.HasPrefix(secret, "pp_"))
	assert.Len(t, prefix, 10)
	assert.Equal(t, secret[:10], prefix)
	assert.Equal(t, HashKey(secret), hash)
	assert.Len(t, hash, 64)

	// Secrets are unique across calls.
	secret2, _, _ := GenerateKey()
	assert.NotEqual(t, secret, secret2)
}

func apiKeyRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "key_hash", "prefix", "scopes", "rate_limit", "monthly_limit",
		"integration_type", "webhook_url", "total_requests", "last_used_at", "is_active",
		"expires_at", "created_at", "updated_at",
	})
}

func TestAPIKeyStoreCreateDefaults(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := NewAPIKeyStore(mock)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO api_keys").
		WithArgs("chatlog bot", pgxmock.AnyArg(), pgxmock.AnyArg(), []byte(`["read"]`),
			1000, pgxmock.AnyArg(), "", "", pgxmock.AnyArg()).
		WillReturnRows(apiKeyRows().AddRow(
			int64(5), "chatlog bot", "h", "pp_abcdefg", []byte(`["read"]`), 1000, nil,
			"", "", int64(0), nil, true, nil, now, now,
		))

	key, secret, err := store.Create(context.Background(), CreateKeyRequest{Name: "chatlog bot"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(secret, "pp_"))
	assert.Equal(t, []string{models.ScopeRead}, key.Scopes)
	assert.Equal(t, 1000, key.RateLimit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyStoreCreateRejectsUnknownScope(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, _, err = NewAPIKeyStore(mock).Create(context.Background(), CreateKeyRequest{
		Name:   "bad",
		Scopes: []string{"admin"},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAPIKeyStoreLookupUnknown(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM api_keys WHERE key_hash").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(apiKeyRows())

	_, err = NewAPIKeyStore(mock).Lookup(context.Background(), "pp_nope")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAPIKeyScopeAndExpiry(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	key := &models.APIKey{
		Scopes:    []string{models.ScopeRead},
		ExpiresAt: &past,
	}

	assert.True(t, key.HasScope(models.ScopeRead))
	assert.False(t, key.HasScope(models.ScopeWrite))
	assert.True(t, key.Expired(time.Now()))

	key.ExpiresAt = nil
	assert.False(t, key.Expired(time.Now()))
}
