// Package novasql provides a fluent MySQL statement builder bound to a
// single dedicated connection.
//
// A Session owns one connection and the transaction running on it. Builders
// created from the session accumulate one statement at a time: a projection,
// a condition tree, joins and ordering. Terminal calls (All, One, Count,
// Exists, Column, ColumnAll, Execute) compile that state into SQL with named
// placeholders, bind the registered parameters and run it exactly once.
//
// # Quick Start
//
//	cfg := novasql.DefaultConfig()
//	cfg.Database = "shop"
//	cfg.Username = "app"
//
//	s, err := novasql.Open(ctx, cfg, novasql.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
// # Conditions
//
// Conditions are trees built with the dialect package. A leaf compares a
// column with a named parameter whose default name is derived from the
// column ("o.user_id" binds ":o_user_id"):
//
//	rows, err := s.New().
//	    Select(dialect.Columns("o", "id", "total")).
//	    From("orders o").
//	    Where(dialect.And(dialect.Eq("o.user_id"), dialect.Cmp(dialect.OpGt, "o.total")),
//	        novasql.P{"o_user_id": 42, "o_total": 100}).
//	    OrWhere(dialect.InValues("o.status", "refunded", "disputed")).
//	    OrderByDesc("o.id").
//	    All()
//
// A nil value bound to "=" renders "IS NULL"; bound to "!=" or "<>" it
// renders "IS NOT NULL". IN leaves expand every parameter registered under
// the "<bind>_" prefix.
//
// # Archived Rows
//
// In the serving context every SELECT excludes rows whose JSON meta column
// marks them archived, for the FROM table and each joined table. The
// operator context, and builders that call IncludeArchived, see all rows.
//
// # Writes and Transactions
//
// Execute retries deadlocks (MySQL 1213 / SQLSTATE 40001) immediately, up to
// the configured retry count. Transaction runs a unit of work and commits or
// rolls back exactly once:
//
//	err := s.Transaction(ctx, func(s *novasql.Session) error {
//	    _, err := s.New().Insert("ledger", novasql.P{"account_id": 1, "amount": -10}).ExecuteContext(ctx)
//	    return err
//	})
//
// # Errors
//
// Statement failures are *QueryError values and match ErrStatement with
// errors.Is; deadlocks additionally match ErrDeadlock. Connection and
// transaction start failures match ErrConnection.
//
// # Thread Safety
//
// A Session serializes statements on its connection. Builders are NOT
// thread-safe; use one per goroutine or call Clone.
package novasql
