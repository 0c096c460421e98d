// internal/workers/scoring/persist-score-report/handler_test.go
package persistscorereport

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-engine/internal/common/errors"
	"loan-engine/internal/common/logger"
	"loan-engine/internal/engine/report"
	"loan-engine/internal/engine/scorer"
)

func testReport() *report.EngineScoreReport {
	return &report.EngineScoreReport{
		ReportID:      "11111111-2222-3333-4444-555555555555",
		ApplicationID: "app-1",
		Breakdown: map[string]scorer.ContributionResult{
			"credit_score_band": {FactorName: "credit_score_band", ContributionPercent: 12, MaxWeight: 20},
		},
		LoanEngineScore:           12,
		LoanEngineScoreMax:        100,
		LoanEngineScoreNormalized: 12,
		Reasons:                   []string{"Low credit score"},
		ScoredBy:                  "scoring-service",
		ScoredAt:                  time.Now().UTC(),
	}
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewHandler(LoadConfig(), db, logger.NewTestLogger(t)), mock
}

func TestExecute_Insert(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(`INSERT INTO score_reports`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := h.execute(context.Background(), &Input{Report: testReport()})
	require.NoError(t, err)
	assert.True(t, output.Persisted)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", output.ReportID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_DuplicateReport(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	output, err := h.execute(context.Background(), &Input{Report: testReport()})
	assert.Nil(t, output)
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDuplicateReport, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_InsertFailureRetryable(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(`INSERT INTO score_reports`).
		WillReturnError(assert.AnError)

	output, err := h.execute(context.Background(), &Input{Report: testReport()})
	assert.Nil(t, output)
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeReportInsertFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestExecute_MissingReport(t *testing.T) {
	h, _ := newTestHandler(t)

	output, err := h.execute(context.Background(), &Input{})
	assert.Nil(t, output)
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}

func TestExecute_DuplicateCheckFailureRetryable(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("app-1").
		WillReturnError(assert.AnError)

	output, err := h.execute(context.Background(), &Input{Report: testReport()})
	assert.Nil(t, output)
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeReportInsertFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
