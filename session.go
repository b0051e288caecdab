package novasql

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"

	"github.com/biyonik/novasql/dialect"
)

/*
=======================================================================================================================
  Session, tek bir fiziksel MySQL bağlantısının sahibidir.

  Her iş birimi (istek, CLI komutu, migration) kendi Session'ını açar ve builder'lara, şema yardımcılarına
  açıkça verir; paket düzeyinde paylaşılan bir bağlantı yoktur. Session aktif transaction'ı izler ve
  statement'ların bağlantıya sırayla gitmesini bir mutex ile sağlar.
=======================================================================================================================
*/

// QueryExecutor, hem *sql.Conn hem *sql.Tx'in sağladığı çalıştırma yöntemlerini soyutlar.
// Transaction aktifse statement'lar tx üzerinden, değilse doğrudan bağlantı üzerinden gider.
type QueryExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ QueryExecutor = (*sql.Conn)(nil)
	_ QueryExecutor = (*sql.Tx)(nil)
)

// Session, bir bağlantıyı, transaction durumunu ve statement politikasını
// (deadlock tekrarı, loglama, bağlam) bir arada tutar.
//
// Session eşzamanlı kullanımda güvenlidir ancak tek bağlantıya sahip olduğu
// için statement'lar sırayla çalışır. Aynı Session üzerinde iki goroutine
// transaction açarsa ikisi aynı transaction'ı paylaşır; her işçi kendi
// Session'ını kullanmalıdır.
type Session struct {
	db     *sql.DB
	conn   *sql.Conn
	ownsDB bool

	grammar         dialect.Grammar
	scanner         Scanner
	logger          *slog.Logger
	appCtx          AppContext
	deadlockRetries uint64
	beginRetries    uint64
	debug           bool
	strict          bool
	txOptions       *sql.TxOptions

	mu     sync.Mutex
	tx     *sql.Tx
	closed bool
}

// NewSession, db havuzundan özel bir bağlantı alır ve onun üzerine bir
// Session kurar. db'nin kapatılması çağıranın sorumluluğundadır.
func NewSession(ctx context.Context, db *sql.DB, opts ...Option) (*Session, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, &ConnectionError{Op: "connect", Attempts: 1, Err: err}
	}

	s := &Session{
		db:              db,
		conn:            conn,
		grammar:         dialect.MySQL(),
		scanner:         NewDefaultScanner(),
		logger:          slog.New(slog.DiscardHandler),
		appCtx:          ContextServing,
		deadlockRetries: DefaultDeadlockRetries,
		beginRetries:    DefaultBeginRetries,
	}
	applyOptions(s, opts)
	return s, nil
}

// New, bu session'a bağlı boş bir Builder oluşturur.
//
//	rows, err := s.New().
//	    Select(dialect.Columns("orders", "id", "total")).
//	    From("orders").
//	    Where(dialect.Eq("user_id"), novasql.P{"user_id": 42}).
//	    All()
func (s *Session) New() *Builder {
	return newBuilder(s, s.grammar, s.appCtx)
}

// Grammar, aktif SQL gramerini döndürür.
func (s *Session) Grammar() dialect.Grammar {
	return s.grammar
}

// Logger, session'ın logger'ını döndürür.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// AppContext, session'ın çalışma bağlamını döndürür.
func (s *Session) AppContext() AppContext {
	return s.appCtx
}

// IsDebug, statement'ların loglanıp loglanmadığını bildirir.
func (s *Session) IsDebug() bool {
	return s.debug
}

// Ping, bağlantının canlı olduğunu doğrular.
func (s *Session) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.conn.PingContext(ctx); err != nil {
		return &ConnectionError{Op: "ping", Attempts: 1, Err: err}
	}
	return nil
}

// Close, aktif bir transaction varsa geri alır ve bağlantıyı bırakır.
// Session Open ile açıldıysa havuz da kapatılır. Tekrar çağrılması zararsızdır.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}
	err := s.conn.Close()
	if s.ownsDB {
		if dbErr := s.db.Close(); err == nil {
			err = dbErr
		}
	}
	return err
}

// executor, aktif transaction'ı ya da bağlantının kendisini döndürür.
// s.mu tutulurken çağrılmalıdır.
func (s *Session) executor() QueryExecutor {
	if s.tx != nil {
		return s.tx
	}
	return s.conn
}
