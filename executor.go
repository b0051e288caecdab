package novasql

import (
	"context"
	"database/sql"
	"time"

	"github.com/sethvargo/go-retry"
)

// exec, mutasyon yapan bir planı çalıştırır. Deadlock sınıfı hatalarda
// deadlockRetries kadar beklemeden tekrar denenir; diğer hatalar hemen
// döner. Son hata SQL metni ve deneme sayısıyla loglanır.
func (s *Session) exec(ctx context.Context, plan *Plan) (*QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	var (
		result   sql.Result
		attempts int
	)
	err := retry.Do(ctx, immediate(s.deadlockRetries), func(ctx context.Context) error {
		attempts++
		start := time.Now()
		res, err := s.executor().ExecContext(ctx, plan.SQL, plan.Args...)
		s.trace(ctx, plan, attempts, time.Since(start), err)
		if err != nil {
			if isDeadlock(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "statement failed",
			"op", plan.Op,
			"sql", plan.Named,
			"attempts", attempts,
			"error", err,
		)
		return nil, &QueryError{Op: plan.Op, Query: plan.Named, Args: plan.Args, Attempts: attempts, Err: err}
	}
	return NewQueryResult(result), nil
}

// query, okuma yapan bir planı çalıştırır ve satırları fn'e verir. Satırlar
// session kilidi bırakılmadan önce kapatılır. Okumalar tekrar denenmez.
func (s *Session) query(ctx context.Context, plan *Plan, fn func(*sql.Rows) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	start := time.Now()
	err := s.readRows(ctx, plan, fn)
	s.trace(ctx, plan, 1, time.Since(start), err)
	if err != nil {
		s.logger.ErrorContext(ctx, "statement failed",
			"op", plan.Op,
			"sql", plan.Named,
			"attempts", 1,
			"error", err,
		)
		return NewQueryError(plan.Op, plan.Named, plan.Args, err)
	}
	return nil
}

func (s *Session) readRows(ctx context.Context, plan *Plan, fn func(*sql.Rows) error) error {
	rows, err := s.executor().QueryContext(ctx, plan.SQL, plan.Args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	if err := fn(rows); err != nil {
		return err
	}
	return rows.Err()
}

// trace, debug modunda her denemeyi loglar.
func (s *Session) trace(ctx context.Context, plan *Plan, attempt int, d time.Duration, err error) {
	if !s.debug {
		return
	}
	attrs := []any{
		"op", plan.Op,
		"sql", plan.Named,
		"args", len(plan.Args),
		"attempt", attempt,
		"duration", d,
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	s.logger.DebugContext(ctx, "statement", attrs...)
}
