package novasql

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/novasql/dialect"
	"github.com/biyonik/novasql/internal/testutil"
)

const updateBalance = "UPDATE accounts SET balance = ? WHERE id = ?"

func updateAccount(s *Session) (int64, error) {
	return s.New().Update("accounts", P{"balance": 10}).Where(dialect.Eq("id"), P{"id": 1}).Execute()
}

func TestExecute_RetriesDeadlock(t *testing.T) {
	logger, buf := testutil.NewCaptureLogger()
	s, mock := newOperatorSession(t, WithLogger(logger), WithDebug(true))
	for i := 0; i < 3; i++ {
		mock.ExpectExec(updateBalance).WithArgs(10, 1).WillReturnError(testutil.DeadlockError())
	}
	mock.ExpectExec(updateBalance).WithArgs(10, 1).WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := updateAccount(s)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	out := buf.String()
	assert.Equal(t, 4, strings.Count(out, "msg=statement "))
	assert.Contains(t, out, "attempt=4")
	assert.NotContains(t, out, "statement failed")
}

func TestExecute_DeadlockRetriesExhausted(t *testing.T) {
	logger, buf := testutil.NewCaptureLogger()
	s, mock := newOperatorSession(t, WithLogger(logger))
	for i := 0; i < 4; i++ {
		mock.ExpectExec(updateBalance).WithArgs(10, 1).WillReturnError(testutil.DeadlockError())
	}

	_, err := updateAccount(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeadlock)
	assert.ErrorIs(t, err, ErrStatement)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 4, qe.Attempts)
	assert.Equal(t, "UPDATE accounts SET balance = :update_balance WHERE id = :id", qe.Query)
	assert.Contains(t, err.Error(), "after 4 attempts")

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "statement failed")
	assert.Contains(t, out, "attempts=4")
}

func TestExecute_CustomDeadlockRetries(t *testing.T) {
	s, mock := newOperatorSession(t, WithDeadlockRetries(0))
	mock.ExpectExec(updateBalance).WithArgs(10, 1).WillReturnError(testutil.DeadlockError())

	_, err := updateAccount(s)
	assert.ErrorIs(t, err, ErrDeadlock)
}

func TestExecute_OtherErrorsAreNotRetried(t *testing.T) {
	s, mock := newOperatorSession(t)
	mock.ExpectExec(updateBalance).WithArgs(10, 1).WillReturnError(assert.AnError)

	_, err := updateAccount(s)
	require.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, ErrDeadlock)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 1, qe.Attempts)
}

func TestExecute_DebugOffLogsNothingOnSuccess(t *testing.T) {
	logger, buf := testutil.NewCaptureLogger()
	s, mock := newOperatorSession(t, WithLogger(logger))
	mock.ExpectExec(updateBalance).WithArgs(10, 1).WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := updateAccount(s)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestQuery_DebugTrace(t *testing.T) {
	logger, buf := testutil.NewCaptureLogger()
	s, mock := newOperatorSession(t, WithLogger(logger), WithDebug(true))
	mock.ExpectQuery("SELECT * FROM users").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.New().Select().From("users").All()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "op=all")
	assert.Contains(t, out, `sql="SELECT * FROM users"`)
}
