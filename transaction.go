package novasql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/biyonik/novasql/internal/validation"
)

// -----------------------------------------------------------------------------
//  Transaction yaşam döngüsü:
//
//    Idle → TransactionActive → (Committed | RolledBack) → Idle
//
//  Bir iş birimi tek bir transaction ile çalışır: başta açılır, sonda tam bir
//  kez kapanır (başarıda commit, hatada rollback). Savepoint'ler aktif
//  transaction içinde kısmi geri dönüş sağlar.
// -----------------------------------------------------------------------------

// immediate, denemeler arasında beklemeyen bir backoff'tur.
func immediate(retries uint64) retry.Backoff {
	return retry.WithMaxRetries(retries, retry.BackoffFunc(func() (time.Duration, bool) {
		return 0, false
	}))
}

// Begin, bir transaction başlatır. Transaction zaten aktifse hiçbir şey
// yapmaz. Başlatma başarısız olursa beginRetries kadar daha denenir; son
// hata loglanır ve *ConnectionError olarak döner.
func (s *Session) Begin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.tx != nil {
		return nil
	}

	attempts := 0
	err := retry.Do(ctx, immediate(s.beginRetries), func(ctx context.Context) error {
		attempts++
		tx, err := s.conn.BeginTx(ctx, s.txOptions)
		if err != nil {
			return retry.RetryableError(err)
		}
		s.tx = tx
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "begin transaction failed", "attempts", attempts, "error", err)
		return &ConnectionError{Op: "begin transaction", Attempts: attempts, Err: err}
	}
	return nil
}

// Commit, aktif transaction'ı onaylar. Aktif transaction yoksa hiçbir şey yapmaz.
func (s *Session) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return NewQueryError("commit", "COMMIT", nil, err)
	}
	return nil
}

// Rollback, aktif transaction'ı geri alır. Aktif transaction yoksa hiçbir
// şey yapmaz; tekrar çağrılması zararsızdır.
func (s *Session) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil {
		return NewQueryError("rollback", "ROLLBACK", nil, err)
	}
	return nil
}

// InTransaction, bir transaction'ın aktif olup olmadığını bildirir.
func (s *Session) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx != nil
}

// Transaction, fn'i bir iş birimi olarak çalıştırır: fn nil dönerse commit,
// hata dönerse ya da panic olursa rollback yapılır. Zaten aktif bir
// transaction varsa fn onun içinde çalışır ve sonlandırma dış çağırana kalır.
//
//	err := s.Transaction(ctx, func(s *novasql.Session) error {
//	    _, err := s.New().Update("accounts", novasql.P{"balance": 10}).
//	        Where(dialect.Eq("id"), novasql.P{"id": 1}).
//	        ExecuteContext(ctx)
//	    return err
//	})
func (s *Session) Transaction(ctx context.Context, fn func(*Session) error) error {
	if s.InTransaction() {
		return fn(s)
	}
	if err := s.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = s.Rollback()
			panic(p)
		}
	}()

	if err := fn(s); err != nil {
		if rbErr := s.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return s.Commit()
}

// Savepoint, aktif transaction içinde bir dönüş noktası oluşturur.
func (s *Session) Savepoint(ctx context.Context, name string) error {
	return s.savepointExec(ctx, "SAVEPOINT", name)
}

// RollbackTo, transaction'ı sonlandırmadan name noktasına geri döner.
func (s *Session) RollbackTo(ctx context.Context, name string) error {
	return s.savepointExec(ctx, "ROLLBACK TO SAVEPOINT", name)
}

// ReleaseSavepoint, savepoint'i serbest bırakır; transaction sürer.
func (s *Session) ReleaseSavepoint(ctx context.Context, name string) error {
	return s.savepointExec(ctx, "RELEASE SAVEPOINT", name)
}

func (s *Session) savepointExec(ctx context.Context, verb, name string) error {
	if err := validation.ValidateIdentifier(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return fmt.Errorf("%w: %s %s", ErrNoTransaction, verb, name)
	}
	query := verb + " " + name
	if _, err := s.tx.ExecContext(ctx, query); err != nil {
		return NewQueryError("savepoint", query, nil, err)
	}
	return nil
}
