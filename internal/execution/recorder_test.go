package execution

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/llm"
	"github.com/promptarena/promptarena/internal/models"
	"github.com/promptarena/promptarena/internal/template"
)

type stubGateway struct {
	result *llm.CompletionResult
	err    error

	lastReq llm.CompletionRequest
}

func (s *stubGateway) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubGateway) Provider(string) (llm.Provider, error) { return nil, nil }
func (s *stubGateway) ListModels() []llm.ModelInfo           { return nil }
func (s *stubGateway) DefaultModel() string                  { return "gpt-4o-mini" }

func expectInsert(mock pgxmock.PgxPoolIface) {
	mock.ExpectQuery("INSERT INTO prompt_executions").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).
			AddRow(int64(101), time.Now()))
}

func TestRecorderSuccess(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	gw := &stubGateway{result: &llm.CompletionResult{
		OutputText:   "分析结果",
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		TokensInput:  7,
		TokensOutput: 3,
		LatencyMs:    120,
	}}
	rec := NewRecorder(NewStore(mock), gw)

	expectInsert(mock)

	exec, err := rec.Run(context.Background(), Request{
		PromptTemplate: "分析：{chat_content}",
		Variables:      template.Variables{ChatContent: "大家好"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(101), exec.ID)
	assert.Equal(t, models.ExecutionSucceeded, exec.Status)
	assert.Equal(t, "分析：大家好", exec.RenderedPrompt)
	assert.Equal(t, "分析结果", exec.Response)
	assert.Equal(t, 10, exec.TokensUsed())
	assert.Equal(t, int64(120), exec.LatencyMs)

	// The default system prompt is applied when none is given.
	assert.Equal(t, template.DefaultSystemPrompt, gw.lastReq.SystemPrompt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorderProviderFailureStillRecords(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	gw := &stubGateway{err: apperr.ErrProviderRejected}
	rec := NewRecorder(NewStore(mock), gw)

	expectInsert(mock)

	exec, err := rec.Run(context.Background(), Request{
		PromptTemplate: "{chat_content}",
		Variables:      template.Variables{ChatContent: "hi"},
	})

	// The provider error propagates and the row is still written.
	assert.ErrorIs(t, err, apperr.ErrProviderRejected)
	require.NotNil(t, exec)
	assert.Equal(t, int64(101), exec.ID)
	assert.Equal(t, models.ExecutionFailed, exec.Status)
	assert.Contains(t, exec.ErrorMessage, "provider rejected")
	assert.Equal(t, "gpt-4o-mini", exec.ModelUsed)
	assert.Empty(t, exec.Response)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorderKeepsUnknownPlaceholders(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	gw := &stubGateway{result: &llm.CompletionResult{OutputText: "ok", Model: "gpt-4o-mini"}}
	rec := NewRecorder(NewStore(mock), gw)

	expectInsert(mock)

	exec, err := rec.Run(context.Background(), Request{
		PromptTemplate: "{chat_content} {unwired}",
		Variables:      template.Variables{ChatContent: "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "x {unwired}", exec.RenderedPrompt)
	assert.Equal(t, "x {unwired}", gw.lastReq.UserPrompt)
}
