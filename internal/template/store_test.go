package template

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/models"
)

type fakeCache struct {
	entries map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string, dest any) error {
	data, ok := c.entries[key]
	if !ok {
		return errors.New("cache miss")
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

func templateRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "description", "group_type", "time_granularity", "style",
		"system_prompt", "user_prompt_template", "required_variables", "optional_variables",
		"is_active", "is_default", "version", "created_at", "updated_at",
	})
}

func TestStoreCreateDerivesVariables(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO prompt_templates").
		WithArgs("daily report", "", models.GroupInvestment, models.GranularityDaily,
			models.StyleAnalytical, DefaultSystemPrompt,
			"分析 {chat_content}，主题 {topic}", []byte(`["chat_content"]`), []byte(`["topic"]`), false).
		WillReturnRows(templateRows().AddRow(
			int64(1), "daily report", "", "investment", "daily", "analytical",
			DefaultSystemPrompt, "分析 {chat_content}，主题 {topic}",
			[]byte(`["chat_content"]`), []byte(`["topic"]`),
			true, false, 1, now, now,
		))

	tpl, err := store.Create(context.Background(), CreateRequest{
		Name:               "daily report",
		GroupType:          models.GroupInvestment,
		TimeGranularity:    models.GranularityDaily,
		UserPromptTemplate: "分析 {chat_content}，主题 {topic}",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), tpl.ID)
	assert.Equal(t, []string{"chat_content"}, tpl.RequiredVariables)
	assert.Equal(t, []string{"topic"}, tpl.OptionalVariables)
	assert.Equal(t, 1, tpl.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCreateValidation(t *testing.T) {
	store, _ := newMockStore(t)

	_, err := store.Create(context.Background(), CreateRequest{
		GroupType:          models.GroupInvestment,
		UserPromptTemplate: "{chat_content}",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = store.Create(context.Background(), CreateRequest{
		Name:               "x",
		GroupType:          "nonsense",
		UserPromptTemplate: "{chat_content}",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestStoreGetByIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM prompt_templates WHERE id").
		WithArgs(int64(42)).
		WillReturnRows(templateRows())

	_, err := store.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUpdateBumpsVersion(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	name := "renamed"

	mock.ExpectQuery("UPDATE prompt_templates SET name = \\$1, version = version \\+ 1").
		WithArgs(name, int64(7)).
		WillReturnRows(templateRows().AddRow(
			int64(7), name, "", "science", "daily", "summary",
			DefaultSystemPrompt, "{chat_content}",
			[]byte(`["chat_content"]`), []byte(`[]`),
			true, false, 2, now, now,
		))

	tpl, err := store.Update(context.Background(), 7, UpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 2, tpl.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUpdateNoFields(t *testing.T) {
	store, _ := newMockStore(t)

	_, err := store.Update(context.Background(), 1, UpdateRequest{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestStoreGetByIDServesRepeatLookupsFromCache(t *testing.T) {
	store, mock := newMockStore(t)
	fc := newFakeCache()
	store.WithCache(fc)
	now := time.Now()

	mock.ExpectQuery("SELECT .+ FROM prompt_templates WHERE id").
		WithArgs(int64(5)).
		WillReturnRows(templateRows().AddRow(
			int64(5), "cached", "", "science", "daily", "analytical",
			DefaultSystemPrompt, "{chat_content}",
			[]byte(`["chat_content"]`), []byte(`[]`),
			true, false, 1, now, now,
		))

	first, err := store.GetByID(context.Background(), 5)
	require.NoError(t, err)

	// Second lookup has no matching query expectation; it must come from
	// the cache.
	second, err := store.GetByID(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.UserPromptTemplate, second.UserPromptTemplate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUpdateInvalidatesCache(t *testing.T) {
	store, mock := newMockStore(t)
	fc := newFakeCache()
	store.WithCache(fc)
	now := time.Now()
	name := "renamed"

	mock.ExpectQuery("UPDATE prompt_templates SET name = \\$1, version = version \\+ 1").
		WithArgs(name, int64(7)).
		WillReturnRows(templateRows().AddRow(
			int64(7), name, "", "science", "daily", "summary",
			DefaultSystemPrompt, "{chat_content}",
			[]byte(`["chat_content"]`), []byte(`[]`),
			true, false, 2, now, now,
		))

	require.NoError(t, fc.Set(context.Background(), templateCacheKey(7), &models.PromptTemplate{ID: 7}, time.Minute))

	_, err := store.Update(context.Background(), 7, UpdateRequest{Name: &name})
	require.NoError(t, err)

	assert.Contains(t, fc.deleted, templateCacheKey(7))
	assert.NotContains(t, fc.entries, templateCacheKey(7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUpdateFlagToggleKeepsVersion(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	inactive := false

	mock.ExpectQuery(`UPDATE prompt_templates SET is_active = \$1, updated_at = now\(\)`).
		WithArgs(inactive, int64(7)).
		WillReturnRows(templateRows().AddRow(
			int64(7), "untouched", "", "science", "daily", "summary",
			DefaultSystemPrompt, "{chat_content}",
			[]byte(`["chat_content"]`), []byte(`[]`),
			false, false, 1, now, now,
		))

	tpl, err := store.Update(context.Background(), 7, UpdateRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, 1, tpl.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreDeleteMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE prompt_templates SET is_active = FALSE").
		WithArgs(int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
