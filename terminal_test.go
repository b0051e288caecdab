package novasql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/novasql/dialect"
	"github.com/biyonik/novasql/internal/testutil"
)

func newTestSession(t *testing.T, opts ...Option) (*Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := testutil.NewMockDB(t)
	s, err := NewSession(context.Background(), db, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mock
}

func newOperatorSession(t *testing.T, opts ...Option) (*Session, sqlmock.Sqlmock) {
	t.Helper()
	return newTestSession(t, append([]Option{WithAppContext(ContextOperator)}, opts...)...)
}

func TestTerminal_All(t *testing.T) {
	s, mock := newOperatorSession(t)
	mock.ExpectQuery("SELECT users.id, users.email FROM users WHERE active = ? ORDER BY id DESC").
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow(2, "b@x.io").
			AddRow(1, "a@x.io"))

	rows, err := s.New().
		Select(dialect.Columns("users", "id", "email")).
		From("users").
		Where(dialect.Eq("active"), P{"active": true}).
		OrderByDesc("id").
		All()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "email"}, rows[0].Columns())
	assert.Equal(t, "b@x.io", rows[0].String("email"))
	id, err := rows[1].Int64("id")
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)
}

func TestTerminal_AllEmpty(t *testing.T) {
	s, mock := newOperatorSession(t)
	mock.ExpectQuery("SELECT * FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := s.New().Select().From("users").All()
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestTerminal_One(t *testing.T) {
	s, mock := newOperatorSession(t)
	mock.ExpectQuery("SELECT * FROM users WHERE id = ?").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "ann").AddRow(2, "bob"))
	mock.ExpectQuery("SELECT * FROM users WHERE id = ?").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	row, err := s.New().Select().From("users").Where(dialect.Eq("id"), P{"id": 1}).One()
	require.NoError(t, err)
	assert.Equal(t, "ann", row.String("name"))

	row, err = s.New().Select().From("users").Where(dialect.Eq("id"), P{"id": 99}).One()
	require.NoError(t, err)
	assert.Equal(t, 0, row.Len())
}

func TestTerminal_Count(t *testing.T) {
	s, mock := newOperatorSession(t)
	mock.ExpectQuery("SELECT COUNT(*) FROM users WHERE active = ?").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(int64(5)))

	n, err := s.New().Select(dialect.Columns("users", "id")).From("users").Where(dialect.Eq("active"), P{"active": 1}).Count()
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestTerminal_Exists(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		s, mock := newOperatorSession(t)
		mock.ExpectQuery("SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)").
			WithArgs("a@x.io").
			WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(int64(1)))

		ok, err := s.New().Select().From("users").Where(dialect.Eq("email"), P{"email": "a@x.io"}).Exists()
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("no match", func(t *testing.T) {
		s, mock := newOperatorSession(t)
		mock.ExpectQuery("SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)").
			WithArgs("z@x.io").
			WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(int64(0)))

		ok, err := s.New().Select().From("users").Where(dialect.Eq("email"), P{"email": "z@x.io"}).Exists()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("zero rows", func(t *testing.T) {
		s, mock := newOperatorSession(t)
		mock.ExpectQuery("SELECT EXISTS (SELECT 1 FROM users)").
			WillReturnRows(sqlmock.NewRows([]string{"e"}))

		ok, err := s.New().Select().From("users").Exists()
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestTerminal_Column(t *testing.T) {
	s, mock := newOperatorSession(t)
	mock.ExpectQuery("SELECT users.email FROM users WHERE id = ?").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow([]byte("a@x.io")))
	mock.ExpectQuery("SELECT users.email FROM users WHERE id = ?").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow(nil))
	mock.ExpectQuery("SELECT users.email FROM users WHERE id = ?").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"email"}))

	got, err := s.New().Select(dialect.Columns("users", "email")).From("users").Where(dialect.Eq("id"), P{"id": 1}).Column()
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", got)

	got, err = s.New().Select(dialect.Columns("users", "email")).From("users").Where(dialect.Eq("id"), P{"id": 2}).Column()
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.New().Select(dialect.Columns("users", "email")).From("users").Where(dialect.Eq("id"), P{"id": 3}).Column()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTerminal_ColumnAll(t *testing.T) {
	s, mock := newOperatorSession(t)
	mock.ExpectQuery("SHOW TABLES").
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop"}).
			AddRow("orders").
			AddRow("users"))

	tables, err := s.New().SetRawSQL("SHOW TABLES").ColumnAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, tables)
}

func TestTerminal_Execute(t *testing.T) {
	s, mock := newOperatorSession(t)
	mock.ExpectExec("INSERT INTO users (email, name) VALUES (?, ?) ON DUPLICATE KEY UPDATE email=email").
		WithArgs("a@x.io", "ann").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("UPDATE users SET name = ? WHERE id = ?").
		WithArgs("bob", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM sessions WHERE expires_at < ?").
		WithArgs("2024-01-01").
		WillReturnResult(sqlmock.NewResult(0, 4))

	res, err := s.New().Insert("users", P{"name": "ann", "email": "a@x.io"}).ExecuteResultContext(context.Background())
	require.NoError(t, err)
	id, err := res.LastInsertID()
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)

	n, err := s.New().Update("users", P{"name": "bob"}).Where(dialect.Eq("id"), P{"id": 7}).Execute()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.New().Delete().From("sessions").
		Where(dialect.Cmp(dialect.OpLt, "expires_at"), P{"expires_at": "2024-01-01"}).
		Execute()
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestTerminal_ExecuteRawDDL(t *testing.T) {
	s, mock := newTestSession(t)
	mock.ExpectExec("CREATE TABLE t (id INT)").WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := s.New().SetRawSQL("CREATE TABLE t (id INT)").Execute()
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestTerminal_ServingContextAddsArchivedFilter(t *testing.T) {
	s, mock := newTestSession(t)
	mock.ExpectQuery("SELECT * FROM orders o LEFT JOIN users u ON u.id = o.user_id" +
		" WHERE (o.meta IS NULL OR o.meta NOT LIKE ?) AND (u.meta IS NULL OR u.meta NOT LIKE ?)").
		WithArgs(`%"archived":true%`, `%"archived":true%`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("SELECT * FROM orders o LEFT JOIN users u ON u.id = o.user_id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	rows, err := s.New().Select().From("orders o").LeftJoin("users u", dialect.On("u.id", "o.user_id")).All()
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = s.New().Select().From("orders o").LeftJoin("users u", dialect.On("u.id", "o.user_id")).IncludeArchived().All()
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestTerminal_ResetsBuilder(t *testing.T) {
	s, mock := newOperatorSession(t)
	mock.ExpectQuery("SELECT * FROM users").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT * FROM teams").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	b := s.New()
	_, err := b.Select().From("users").All()
	require.NoError(t, err)
	assert.Empty(t, b.Statement().Table)

	_, err = b.Select().From("teams").All()
	require.NoError(t, err)
}

func TestTerminal_ResetsBuilderOnCompileError(t *testing.T) {
	s, mock := newOperatorSession(t)
	mock.ExpectQuery("SELECT * FROM users").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	b := s.New()
	_, err := b.Select().From("users").Where(dialect.In("id")).All()
	require.ErrorIs(t, err, ErrEmptyWhereIn)

	_, err = b.Select().From("users").All()
	require.NoError(t, err)
}

func TestTerminal_MissingParameterNeverReachesServer(t *testing.T) {
	s, _ := newOperatorSession(t)

	_, err := s.New().Select().From("users").Where(dialect.Eq("id")).All()
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestTerminal_QueryError(t *testing.T) {
	logger, buf := testutil.NewCaptureLogger()
	s, mock := newOperatorSession(t, WithLogger(logger))
	mock.ExpectQuery("SELECT * FROM missing").WillReturnError(assert.AnError)

	_, err := s.New().Select().From("missing").All()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatement)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, ErrDeadlock)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "all", qe.Op)
	assert.Equal(t, "SELECT * FROM missing", qe.Query)
	assert.Contains(t, buf.String(), "statement failed")
	assert.Contains(t, buf.String(), "SELECT * FROM missing")
}

func TestTerminal_DetachedBuilder(t *testing.T) {
	_, err := New().Select().From("users").All()
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = New().Insert("users", P{"a": 1}).Execute()
	assert.ErrorIs(t, err, ErrNoSession)
}

type account struct {
	ID      int64  `db:"id"`
	Email   string `db:"email"`
	Balance int64
	Secret  string `db:"-"`
}

func TestTerminal_AllInto(t *testing.T) {
	s, mock := newOperatorSession(t)
	mock.ExpectQuery("SELECT * FROM accounts").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "balance", "extra"}).
			AddRow(int64(1), "a@x.io", int64(10), "x").
			AddRow(int64(2), "b@x.io", int64(20), "y"))

	var got []account
	require.NoError(t, s.New().Select().From("accounts").AllIntoContext(context.Background(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, account{ID: 2, Email: "b@x.io", Balance: 20}, got[1])
}

func TestTerminal_OneInto(t *testing.T) {
	s, mock := newOperatorSession(t)
	mock.ExpectQuery("SELECT * FROM accounts WHERE id = ?").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(int64(1), "a@x.io"))
	mock.ExpectQuery("SELECT * FROM accounts WHERE id = ?").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	var a account
	require.NoError(t, s.New().Select().From("accounts").Where(dialect.Eq("id"), P{"id": 1}).OneIntoContext(context.Background(), &a))
	assert.Equal(t, "a@x.io", a.Email)

	err := s.New().Select().From("accounts").Where(dialect.Eq("id"), P{"id": 2}).OneIntoContext(context.Background(), &a)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestTerminal_Paginate(t *testing.T) {
	s, mock := newOperatorSession(t)
	mock.ExpectQuery("SELECT COUNT(*) FROM posts WHERE author = ?").
		WithArgs("ann").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(25)))
	mock.ExpectQuery("SELECT * FROM posts WHERE author = ? ORDER BY id DESC LIMIT 10 OFFSET 10").
		WithArgs("ann").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(15).AddRow(14))

	page, err := s.New().Select().From("posts").
		Where(dialect.Eq("author"), P{"author": "ann"}).
		OrderByDesc("id").
		PaginateContext(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext())
	assert.True(t, page.HasPrev())
	assert.Len(t, page.Rows, 2)
}
