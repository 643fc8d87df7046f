package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptarena/promptarena/internal/template"
)

func newTemplateServer(t *testing.T) (*httptest.Server, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	h := NewTemplateHandler(template.NewStore(mock))
	r := chi.NewRouter()
	r.Post("/templates", h.Create)
	r.Get("/templates/{id}", h.Get)
	r.Delete("/templates/{id}", h.Delete)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, mock
}

func templateRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "description", "group_type", "time_granularity", "style",
		"system_prompt", "user_prompt_template", "required_variables", "optional_variables",
		"is_active", "is_default", "version", "created_at", "updated_at",
	})
}

func TestTemplateCreate(t *testing.T) {
	srv, mock := newTemplateServer(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO prompt_templates").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(templateRows().AddRow(
			int64(1), "daily", "", "investment", "daily", "analytical",
			template.DefaultSystemPrompt, "{chat_content}",
			[]byte(`["chat_content"]`), []byte(`[]`),
			true, false, 1, now, now,
		))

	body := `{"name": "daily", "group_type": "investment", "user_prompt_template": "{chat_content}"}`
	resp, err := http.Post(srv.URL+"/templates", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateCreateValidationError(t *testing.T) {
	srv, _ := newTemplateServer(t)

	body := `{"group_type": "investment", "user_prompt_template": "{chat_content}"}`
	resp, err := http.Post(srv.URL+"/templates", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTemplateGetNotFound(t *testing.T) {
	srv, mock := newTemplateServer(t)

	mock.ExpectQuery("SELECT .+ FROM prompt_templates WHERE id").
		WithArgs(int64(42)).
		WillReturnRows(templateRows())

	resp, err := http.Get(srv.URL + "/templates/42")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateGetBadID(t *testing.T) {
	srv, _ := newTemplateServer(t)

	resp, err := http.Get(srv.URL + "/templates/not-a-number")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTemplateDelete(t *testing.T) {
	srv, mock := newTemplateServer(t)

	mock.ExpectExec("UPDATE prompt_templates SET is_active = FALSE").
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/templates/3", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
