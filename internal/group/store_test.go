package group

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/models"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

func groupRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "external_id", "name", "type", "description", "member_count",
		"extra_data", "custom_prompt_template", "is_active", "created_at", "updated_at",
	})
}

func TestStoreCreate(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO groups").
		WithArgs("wx_123", "投资交流群", models.GroupInvestment, "", 0, pgxmock.AnyArg(), "").
		WillReturnRows(groupRows().AddRow(
			int64(1), "wx_123", "投资交流群", "investment", "", 0,
			[]byte(`{}`), "", true, now, now,
		))

	g, err := store.Create(context.Background(), CreateRequest{
		ExternalID: "wx_123",
		Name:       "投资交流群",
		Type:       models.GroupInvestment,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.ID)
	assert.Equal(t, "wx_123", g.ExternalID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCreateDuplicateExternalID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO groups").
		WithArgs("wx_123", "重复群", models.GroupCustom, "", 0, pgxmock.AnyArg(), "").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "groups_external_id_key"})

	_, err := store.Create(context.Background(), CreateRequest{
		ExternalID: "wx_123",
		Name:       "重复群",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "wx_123")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCreateValidation(t *testing.T) {
	store, _ := newMockStore(t)

	_, err := store.Create(context.Background(), CreateRequest{Name: "无外部ID"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = store.Create(context.Background(), CreateRequest{
		ExternalID: "x", Name: "y", Type: "nonsense",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestStoreGetByExternalIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM groups WHERE external_id").
		WithArgs("missing").
		WillReturnRows(groupRows())

	_, err := store.GetByExternalID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreListAppliesSearchAndPaging(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM groups WHERE \(name ILIKE \$1 OR external_id ILIKE \$1\) AND is_active ORDER BY id LIMIT \$2 OFFSET \$3`).
		WithArgs("%投资%", 10, 20).
		WillReturnRows(groupRows())

	_, err := store.List(context.Background(), ListFilter{
		Search:     "投资",
		ActiveOnly: true,
		Limit:      10,
		Offset:     20,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
