package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/novasql"
	"github.com/biyonik/novasql/internal/config"
	"github.com/biyonik/novasql/internal/testutil"
	"github.com/biyonik/novasql/migrate"
	"github.com/biyonik/novasql/schema"
)

const tableExistsSQL = "SELECT EXISTS (SELECT 1 FROM INFORMATION_SCHEMA.TABLES WHERE table_schema = ? AND table_name = ?)"

func mockOpener(t *testing.T) (Opener, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := testutil.NewMockDB(t)
	open := func(ctx context.Context, _ *config.Config, logger *slog.Logger) (*novasql.Session, error) {
		return novasql.NewSession(ctx, db, novasql.WithLogger(logger), novasql.WithAppContext(novasql.ContextOperator))
	}
	return open, mock
}

func run(t *testing.T, open Opener, args ...string) (string, error) {
	t.Helper()
	return runWith(t, open, migrate.Defaults(), args...)
}

func runWith(t *testing.T, open Opener, migrations []migrate.Migration, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := newRootCmd(open, migrations)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--database", "shop"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPing(t *testing.T) {
	open, _ := mockOpener(t)

	out, err := run(t, open, "ping", "--host", "db", "--port", "3307")
	require.NoError(t, err)
	assert.Equal(t, "ok db:3307/shop\n", out)
}

func TestQuery(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name FROM info").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "ann").AddRow(int64(2), nil))
	mock.ExpectCommit()

	out, err := run(t, open, "query", "SELECT id, name FROM info")
	require.NoError(t, err)
	assert.Contains(t, out, "ann")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")
}

func TestQuery_JSON(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT name FROM info").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("ann"))
	mock.ExpectCommit()

	out, err := run(t, open, "query", "SELECT name FROM info", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name": "ann"}]`, out)
}

func TestQuery_Empty(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT name FROM info").WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectCommit()

	out, err := run(t, open, "query", "SELECT name FROM info")
	require.NoError(t, err)
	assert.Equal(t, "(0 rows)\n", out)
}

func TestExec(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM info WHERE id = 1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := run(t, open, "exec", "DELETE FROM info WHERE id = 1")
	require.NoError(t, err)
	assert.Equal(t, "1 rows affected\n", out)
}

func TestExec_FailureRollsBack(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM info").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := run(t, open, "exec", "DELETE FROM info")
	assert.ErrorIs(t, err, novasql.ErrStatement)
}

func TestInvalidConfigStopsBeforeConnecting(t *testing.T) {
	opened := false
	open := func(context.Context, *config.Config, *slog.Logger) (*novasql.Session, error) {
		opened = true
		return nil, assert.AnError
	}

	_, err := run(t, open, "query", "SELECT 1", "-o", "csv")
	assert.ErrorContains(t, err, "unknown output")
	assert.False(t, opened)
}

func TestInspect(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectBegin()
	mock.ExpectQuery(tableExistsSQL).WithArgs("shop", "info").
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT INFORMATION_SCHEMA.COLUMNS.column_name, INFORMATION_SCHEMA.COLUMNS.column_type,"+
		" INFORMATION_SCHEMA.COLUMNS.is_nullable, INFORMATION_SCHEMA.COLUMNS.column_key,"+
		" INFORMATION_SCHEMA.COLUMNS.column_default FROM INFORMATION_SCHEMA.COLUMNS"+
		" WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position ASC").
		WithArgs("shop", "info").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "COLUMN_TYPE", "IS_NULLABLE", "COLUMN_KEY", "COLUMN_DEFAULT"}).
			AddRow("id", "int", "NO", "PRI", nil).
			AddRow("name", "varchar(255)", "YES", "UNI", nil))
	mock.ExpectQuery("SELECT INFORMATION_SCHEMA.STATISTICS.INDEX_NAME, INFORMATION_SCHEMA.STATISTICS.COLUMN_NAME"+
		" FROM INFORMATION_SCHEMA.STATISTICS WHERE table_schema = ? AND table_name = ? AND index_name != ?"+
		" ORDER BY INDEX_NAME ASC, SEQ_IN_INDEX ASC").
		WithArgs("shop", "info", "PRIMARY").
		WillReturnRows(sqlmock.NewRows([]string{"INDEX_NAME", "COLUMN_NAME"}).AddRow("name_index", "name"))
	mock.ExpectQuery("SELECT tc.CONSTRAINT_NAME, kcu.TABLE_NAME, kcu.COLUMN_NAME, kcu.REFERENCED_TABLE_NAME,"+
		" kcu.REFERENCED_COLUMN_NAME FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc"+
		" LEFT JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu"+
		" ON (tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME AND tc.TABLE_SCHEMA = kcu.TABLE_SCHEMA)"+
		" WHERE CONSTRAINT_TYPE = ? AND tc.table_schema = ? AND tc.table_name = ?").
		WithArgs("FOREIGN KEY", "shop", "info").
		WillReturnRows(sqlmock.NewRows([]string{"CONSTRAINT_NAME", "TABLE_NAME", "COLUMN_NAME",
			"REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME"}))
	mock.ExpectCommit()

	out, err := run(t, open, "inspect", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "varchar(255)")
	assert.Contains(t, out, "name_index")
	assert.NotContains(t, out, "foreign key")
}

func TestInspect_MissingTable(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectBegin()
	mock.ExpectQuery(tableExistsSQL).WithArgs("shop", "nope").
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(int64(0)))
	mock.ExpectRollback()

	_, err := run(t, open, "inspect", "nope")
	assert.EqualError(t, err, "table shop.nope not found")
}

func TestMigrate_UpNothingPending(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectBegin()
	mock.ExpectQuery(tableExistsSQL).WithArgs("shop", migrate.Table).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT migrations.migration_name, migrations.migration_batch FROM migrations").
		WillReturnRows(sqlmock.NewRows([]string{"migration_name", "migration_batch"}).
			AddRow("M220614171406BaseTableSetup", int64(1)))
	mock.ExpectCommit()

	out, err := run(t, open, "migrate", "up")
	require.NoError(t, err)
	assert.Equal(t, "No new migrations found.\n", out)
}

func TestMigrate_RollbackIrreversible(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectBegin()
	mock.ExpectQuery(tableExistsSQL).WithArgs("shop", migrate.Table).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT m1.migration_name FROM migrations m1" +
		" INNER JOIN (SELECT migration_batch batch FROM migrations ORDER BY migration_batch DESC LIMIT 1) m2" +
		" ON m1.migration_batch = m2.batch ORDER BY migration_id DESC").
		WillReturnRows(sqlmock.NewRows([]string{"migration_name"}).AddRow("M220614171406BaseTableSetup"))
	mock.ExpectCommit()

	_, err := run(t, open, "migrate", "rollback")
	assert.ErrorIs(t, err, migrate.ErrIrreversible)
}

func TestMigrate_RollbackCommitsRevertedMigrations(t *testing.T) {
	dropA := func(ctx context.Context, sc *schema.Schema) error {
		if !sc.DropTable(ctx, "a") {
			return assert.AnError
		}
		return nil
	}
	noop := func(context.Context, *schema.Schema) error { return nil }
	migrations := []migrate.Migration{
		{Name: "M1_a", Up: noop, Down: dropA},
		{Name: "M2_b", Up: noop},
	}

	open, mock := mockOpener(t)
	mock.ExpectBegin()
	mock.ExpectQuery(tableExistsSQL).WithArgs("shop", migrate.Table).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT m1.migration_name FROM migrations m1" +
		" INNER JOIN (SELECT migration_batch batch FROM migrations ORDER BY migration_batch DESC LIMIT 1) m2" +
		" ON m1.migration_batch = m2.batch ORDER BY migration_id DESC").
		WillReturnRows(sqlmock.NewRows([]string{"migration_name"}).AddRow("M2_b").AddRow("M1_a"))
	mock.ExpectExec("DROP TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM migrations WHERE migration_name = ?").WithArgs("M1_a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := runWith(t, open, migrations, "migrate", "rollback")
	assert.ErrorIs(t, err, migrate.ErrIrreversible)
	assert.Contains(t, out, "Rolled back M1_a")
}

func TestMigrate_StatusWithoutTable(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectBegin()
	mock.ExpectQuery(tableExistsSQL).WithArgs("shop", migrate.Table).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(int64(0)))
	mock.ExpectCommit()

	out, err := run(t, open, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "M220614171406BaseTableSetup")
	assert.Contains(t, out, "pending")
}

func TestMigrate_NewWritesStub(t *testing.T) {
	open := func(context.Context, *config.Config, *slog.Logger) (*novasql.Session, error) {
		t.Fatal("migrate new must not connect")
		return nil, nil
	}

	out, err := run(t, open, "migrate", "new", "create", "users", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Migration file created: migrations/m")

	files, err := filepath.Glob(filepath.Join("migrations", "m*createuserstable.go"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	src, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(src), "package migrations")
	assert.Contains(t, string(src), "CreateUsersTable() migrate.Migration")
}
