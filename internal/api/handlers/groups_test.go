package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptarena/promptarena/internal/group"
)

func newGroupServer(t *testing.T) (*httptest.Server, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	h := NewGroupHandler(group.NewStore(mock))
	r := chi.NewRouter()
	r.Post("/groups", h.Create)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, mock
}

func TestGroupCreateDuplicateExternalIDIsBadRequest(t *testing.T) {
	srv, mock := newGroupServer(t)

	mock.ExpectQuery("INSERT INTO groups").
		WithArgs("wx_123", "投资群", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "groups_external_id_key"})

	body := `{"external_id": "wx_123", "name": "投资群"}`
	resp, err := http.Post(srv.URL+"/groups", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
