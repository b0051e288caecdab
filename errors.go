package novasql

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/biyonik/novasql/dialect"
)

// Sentinel errors for novasql.
// These errors can be checked using errors.Is().
var (
	// ErrConnection matches every *ConnectionError.
	ErrConnection = errors.New("novasql: connection error")

	// ErrStatement matches every *QueryError: malformed SQL, bind mismatch or
	// a failure reported by the server.
	ErrStatement = errors.New("novasql: statement error")

	// ErrDeadlock matches a *QueryError whose cause is a deadlock or
	// serialization failure (MySQL 1213 / SQLSTATE 40001).
	ErrDeadlock = errors.New("novasql: deadlock detected")

	// ErrNoRows is returned by OneInto when the query matched nothing.
	ErrNoRows = errors.New("novasql: no rows in result set")

	// ErrNoSession is returned by terminals of a builder created without a session.
	ErrNoSession = errors.New("novasql: builder has no session")

	// ErrSessionClosed is returned when a closed session is used.
	ErrSessionClosed = errors.New("novasql: session closed")

	// ErrNoTransaction is returned by savepoint calls outside a transaction.
	ErrNoTransaction = errors.New("novasql: no active transaction")

	// ErrMissingParameter is returned when the SQL references a bind name
	// that was never registered.
	ErrMissingParameter = errors.New("novasql: missing parameter")

	// ErrInvalidDirection is returned for ORDER BY directions other than ASC/DESC.
	ErrInvalidDirection = errors.New("novasql: invalid order direction")

	// ErrInvalidAppContext is returned when a context name cannot be parsed.
	ErrInvalidAppContext = errors.New("novasql: invalid application context")

	// ErrNilDestination is returned when a nil pointer is passed as scan destination.
	ErrNilDestination = errors.New("novasql: nil destination pointer")

	// ErrInvalidDestination is returned when the destination is not a pointer to struct/slice.
	ErrInvalidDestination = errors.New("novasql: destination must be a pointer to struct or slice")
)

// Builder-time errors produced while rendering a statement.
var (
	ErrNoTable         = dialect.ErrNoTable
	ErrNoColumns       = dialect.ErrNoColumns
	ErrEmptyWhereIn    = dialect.ErrEmptyWhereIn
	ErrInvalidOperator = dialect.ErrInvalidOperator
	ErrInvalidJoin     = dialect.ErrInvalidJoin
)

// QueryError wraps a failed statement with its SQL text and attempt count.
type QueryError struct {
	Op       string
	Query    string
	Args     []any
	Attempts int
	Err      error
}

func (e *QueryError) Error() string {
	msg := "novasql: " + e.Op + " failed"
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	return msg + ": " + e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is reports ErrStatement for every QueryError and ErrDeadlock when the
// cause is a deadlock.
func (e *QueryError) Is(target error) bool {
	switch target {
	case ErrStatement:
		return true
	case ErrDeadlock:
		return isDeadlock(e.Err)
	}
	return false
}

// NewQueryError creates a new QueryError with context.
func NewQueryError(op, query string, args []any, err error) *QueryError {
	return &QueryError{Op: op, Query: query, Args: args, Attempts: 1, Err: err}
}

// ConnectionError reports a failure to obtain the connection or to start a
// transaction on it.
type ConnectionError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	msg := "novasql: " + e.Op
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" failed after %d attempts", e.Attempts)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// MySQL server error numbers and SQLSTATE treated as retryable.
const (
	erLockDeadlock        = 1213
	sqlStateSerialization = "40001"
)

// isDeadlock, hatanın bir kilitlenme ya da serileştirme hatası olup
// olmadığını bildirir.
func isDeadlock(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == erLockDeadlock || string(me.SQLState[:]) == sqlStateSerialization
}
