package evaluation

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/execution"
)

func newMockService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	gw := &scriptedGateway{outputs: []string{`{"scores": {"relevance": 5}}`}}
	svc := NewService(
		NewStore(mock),
		execution.NewStore(mock),
		nil,
		nil,
		NewJudge(gw),
	)
	return svc, mock
}

func TestCreateRejectsSmallCohort(t *testing.T) {
	svc, mock := newMockService(t)

	_, err := svc.Create(context.Background(), CreateRequest{
		Name:         "too small",
		ExecutionIDs: []int64{1},
	})
	assert.ErrorIs(t, err, apperr.ErrInsufficientExecutions)

	// Nothing touched the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsBadCriteria(t *testing.T) {
	svc, mock := newMockService(t)

	_, err := svc.Create(context.Background(), CreateRequest{
		Name:         "bad weights",
		ExecutionIDs: []int64{1, 2},
		Criteria:     map[string]float64{"relevance": -1},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidCriteria)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func evaluationRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "description", "execution_ids", "criteria", "scores",
		"winner_execution_id", "evaluator_notes", "auto_evaluated", "created_at",
	})
}

func TestManualScorePicksWinner(t *testing.T) {
	svc, mock := newMockService(t)

	// Evaluation over executions 1 and 2; execution 2 already scored 5.
	mock.ExpectQuery("SELECT .+ FROM prompt_evaluations WHERE id").
		WithArgs(int64(40)).
		WillReturnRows(evaluationRows().AddRow(
			int64(40), "cmp", "", []byte(`[1,2]`), []byte(`{"relevance":1}`),
			[]byte(`{"2":{"relevance":5}}`), nil, "", false, time.Now(),
		))
	mock.ExpectExec("UPDATE prompt_evaluations").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), int64(40)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ev, err := svc.ManualScore(context.Background(), 40, ManualScoreRequest{
		ExecutionID: 1,
		Scores:      map[string]float64{"relevance": 8},
	})
	require.NoError(t, err)

	// A scored 8 beats B's 5.
	require.NotNil(t, ev.WinnerExecutionID)
	assert.Equal(t, int64(1), *ev.WinnerExecutionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManualScoreRejectsForeignExecution(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery("SELECT .+ FROM prompt_evaluations WHERE id").
		WithArgs(int64(40)).
		WillReturnRows(evaluationRows().AddRow(
			int64(40), "cmp", "", []byte(`[1,2]`), []byte(`{"relevance":1}`),
			[]byte(`{}`), nil, "", false, time.Now(),
		))

	_, err := svc.ManualScore(context.Background(), 40, ManualScoreRequest{
		ExecutionID: 99,
		Scores:      map[string]float64{"relevance": 8},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestManualScoreRejectsUnknownCriterion(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery("SELECT .+ FROM prompt_evaluations WHERE id").
		WithArgs(int64(40)).
		WillReturnRows(evaluationRows().AddRow(
			int64(40), "cmp", "", []byte(`[1,2]`), []byte(`{"relevance":1}`),
			[]byte(`{}`), nil, "", false, time.Now(),
		))

	_, err := svc.ManualScore(context.Background(), 40, ManualScoreRequest{
		ExecutionID: 1,
		Scores:      map[string]float64{"speed": 8},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
