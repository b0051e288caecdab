package novasql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/novasql/dialect"
	"github.com/biyonik/novasql/internal/testutil"
)

func TestNewSession_Defaults(t *testing.T) {
	s, _ := newTestSession(t)

	assert.Equal(t, ContextServing, s.AppContext())
	assert.Equal(t, "mysql", s.Grammar().Name())
	assert.False(t, s.IsDebug())
	assert.NotNil(t, s.Logger())
	assert.EqualValues(t, DefaultDeadlockRetries, s.deadlockRetries)
	assert.EqualValues(t, DefaultBeginRetries, s.beginRetries)
}

func TestNewSession_Options(t *testing.T) {
	logger := testutil.NewTestLogger(t)
	s, _ := newTestSession(t,
		WithAppContext(ContextOperator),
		WithLogger(logger),
		WithDebug(true),
		WithDeadlockRetries(5),
		WithStrictIdentifiers(true),
		nil,
	)

	assert.Equal(t, ContextOperator, s.AppContext())
	assert.Same(t, logger, s.Logger())
	assert.True(t, s.IsDebug())
	assert.EqualValues(t, 5, s.deadlockRetries)

	g, ok := s.Grammar().(*dialect.MySQLGrammar)
	require.True(t, ok)
	assert.Equal(t, "mysql(strict=true)", g.String())
}

func TestNewSession_ClosedPool(t *testing.T) {
	db, _ := testutil.NewMockDB(t)
	_ = db.Close()

	_, err := NewSession(context.Background(), db)
	assert.ErrorIs(t, err, ErrConnection)
}

func TestSession_Ping(t *testing.T) {
	s, _ := newTestSession(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestSession_CloseRollsBackOpenTransaction(t *testing.T) {
	s, mock := newTestSession(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	require.NoError(t, s.Begin(context.Background()))
	require.NoError(t, s.Close())
	assert.False(t, s.InTransaction())
}

func TestSession_UseAfterClose(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.New().Select().From("users").All()
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.New().Delete().From("users").Execute()
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, s.Begin(context.Background()), ErrSessionClosed)
	assert.ErrorIs(t, s.Ping(context.Background()), ErrSessionClosed)
}
