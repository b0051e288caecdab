// Package migrate, isimlendirilmiş şema değişikliklerini batch'ler halinde
// uygular ve geri alır. Uygulanan migration'lar "migrations" tablosunda
// tutulur; aynı Up çağrısında uygulananlar aynı batch numarasını paylaşır.
//
//	r, err := migrate.NewRunner(schema.New(s, "shop"), migrate.Defaults()...)
//	applied, err := r.Up(ctx)
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/biyonik/novasql"
	"github.com/biyonik/novasql/dialect"
	"github.com/biyonik/novasql/schema"
)

// Table, uygulanan migration kayıtlarının tutulduğu tablodur.
const Table = "migrations"

var (
	// ErrIrreversible, Down'ı olmayan ya da geri alınamayan bir migration için döner.
	ErrIrreversible = errors.New("migrate: migration cannot be rolled back")

	// ErrUnknownMigration, kayıtlı olmayan bir migration adı için döner.
	ErrUnknownMigration = errors.New("migrate: unknown migration")

	// ErrDuplicateMigration, aynı adla iki migration kaydedildiğinde döner.
	ErrDuplicateMigration = errors.New("migrate: duplicate migration")

	// ErrInvalidMigration, adı ya da Up'ı eksik bir migration için döner.
	ErrInvalidMigration = errors.New("migrate: invalid migration")
)

// Func, bir migration adımıdır.
type Func func(ctx context.Context, sc *schema.Schema) error

// Migration, adıyla sıralanan tek bir şema değişikliğidir. Ad, zaman
// damgalı bir önek taşımalıdır (M220614171406BaseTableSetup gibi); sıralama
// ada göre yapılır.
type Migration struct {
	Name string
	Up   Func
	Down Func
}

// Result, uygulanan ya da geri alınan bir migration'ın sonucudur.
type Result struct {
	Name    string
	Batch   int64
	Elapsed time.Duration
}

// Record, migrations tablosundaki bir satırdır.
type Record struct {
	ID        int64     `db:"migration_id"`
	Name      string    `db:"migration_name"`
	Batch     int64     `db:"migration_batch"`
	AppliedAt time.Time `db:"date_applied"`
}

// Runner, kayıtlı migration'ları bir şema üzerinde çalıştırır.
type Runner struct {
	schema     *schema.Schema
	session    *novasql.Session
	logger     *slog.Logger
	migrations []Migration
}

// NewRunner, migration'ları ada göre sıralayıp bir Runner oluşturur.
func NewRunner(sc *schema.Schema, migrations ...Migration) (*Runner, error) {
	seen := make(map[string]struct{}, len(migrations))
	for _, m := range migrations {
		if m.Name == "" || m.Up == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMigration, m.Name)
		}
		if _, dup := seen[m.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMigration, m.Name)
		}
		seen[m.Name] = struct{}{}
	}

	sorted := slices.Clone(migrations)
	slices.SortFunc(sorted, func(a, b Migration) int { return strings.Compare(a.Name, b.Name) })

	return &Runner{
		schema:     sc,
		session:    sc.Session(),
		logger:     sc.Session().Logger().With("component", "migrate"),
		migrations: sorted,
	}, nil
}

// Migrations, kayıtlı migration'ları uygulanma sırasıyla döndürür.
func (r *Runner) Migrations() []Migration {
	return slices.Clone(r.migrations)
}

func (r *Runner) lookup(name string) (Migration, bool) {
	i := slices.IndexFunc(r.migrations, func(m Migration) bool { return m.Name == name })
	if i < 0 {
		return Migration{}, false
	}
	return r.migrations[i], true
}

// applied, uygulanmış migration adlarını ve bir sonraki batch numarasını
// döndürür. Tablo yoksa batch 1'dir.
func (r *Runner) applied(ctx context.Context) (map[string]bool, int64, error) {
	done := make(map[string]bool)
	exists, err := r.schema.TableExists(ctx, Table)
	if err != nil || !exists {
		return done, 1, err
	}

	rows, err := r.session.New().
		Select(dialect.Columns(Table, "migration_name", "migration_batch")).
		From(Table).
		IncludeArchived().
		AllContext(ctx)
	if err != nil {
		return nil, 0, err
	}

	var last int64
	for _, row := range rows {
		done[row.String("migration_name")] = true
		batch, err := row.Int64("migration_batch")
		if err != nil {
			return nil, 0, err
		}
		last = max(last, batch)
	}
	return done, last + 1, nil
}

// Pending, henüz uygulanmamış migration adlarını sırasıyla döndürür.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	done, _, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, m := range r.migrations {
		if !done[m.Name] {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

// Up, uygulanmamış migration'ları ada göre sırayla tek bir yeni batch
// olarak uygular. İlk hatada durur; o ana kadar uygulananlar kayıtlı kalır.
func (r *Runner) Up(ctx context.Context) ([]Result, error) {
	done, batch, err := r.applied(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: read applied migrations: %w", err)
	}

	var results []Result
	for _, m := range r.migrations {
		if done[m.Name] {
			continue
		}

		start := time.Now()
		if err := m.Up(ctx, r.schema); err != nil {
			r.logger.ErrorContext(ctx, "migration failed", "migration", m.Name, "error", err)
			return results, fmt.Errorf("migrate: %s: %w", m.Name, err)
		}
		elapsed := time.Since(start)

		_, err := r.session.New().
			Insert(Table, novasql.P{"migration_name": m.Name, "migration_batch": batch}).
			ExecuteContext(ctx)
		if err != nil {
			return results, fmt.Errorf("migrate: record %s: %w", m.Name, err)
		}

		r.logger.InfoContext(ctx, "migration applied", "migration", m.Name, "batch", batch, "elapsed", elapsed)
		results = append(results, Result{Name: m.Name, Batch: batch, Elapsed: elapsed})
	}
	return results, nil
}

// latestBatch, son batch'teki migration adlarını en yeniden eskiye döndürür.
func (r *Runner) latestBatch(ctx context.Context) ([]string, error) {
	exists, err := r.schema.TableExists(ctx, Table)
	if err != nil || !exists {
		return nil, err
	}
	return r.session.New().
		Select(dialect.Columns("m1", "migration_name")).
		From(Table+" m1").
		InnerJoin(
			"(SELECT migration_batch batch FROM "+Table+" ORDER BY migration_batch DESC LIMIT 1) m2",
			dialect.On("m1.migration_batch", "m2.batch"),
		).
		IncludeArchived().
		OrderByDesc("migration_id").
		ColumnAllContext(ctx)
}

// Rollback, son batch'i en yeni migration'dan başlayarak geri alır. Geri
// alınamayan bir migration loglanır ve atlanır; kaydı tabloda kalır. Tüm
// başarısızlıklar birleştirilerek döndürülür.
func (r *Runner) Rollback(ctx context.Context) ([]Result, error) {
	names, err := r.latestBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: read latest batch: %w", err)
	}

	var (
		results []Result
		errs    []error
	)
	for _, name := range names {
		start := time.Now()
		if err := r.down(ctx, name); err != nil {
			r.logger.ErrorContext(ctx, "migration rollback failed", "migration", name, "error", err)
			errs = append(errs, fmt.Errorf("migrate: %s: %w", name, err))
			continue
		}
		elapsed := time.Since(start)

		_, err := r.session.New().
			Delete().
			From(Table).
			Where(dialect.Eq("migration_name"), novasql.P{"migration_name": name}).
			ExecuteContext(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("migrate: forget %s: %w", name, err))
			continue
		}

		r.logger.InfoContext(ctx, "migration rolled back", "migration", name, "elapsed", elapsed)
		results = append(results, Result{Name: name, Elapsed: elapsed})
	}
	return results, errors.Join(errs...)
}

func (r *Runner) down(ctx context.Context, name string) error {
	m, ok := r.lookup(name)
	if !ok {
		return ErrUnknownMigration
	}
	if m.Down == nil {
		return ErrIrreversible
	}
	return m.Down(ctx, r.schema)
}

// Status, uygulanmış migration kayıtlarını id sırasıyla döndürür. Tablo
// yoksa liste boştur.
func (r *Runner) Status(ctx context.Context) ([]Record, error) {
	exists, err := r.schema.TableExists(ctx, Table)
	if err != nil || !exists {
		return nil, err
	}

	var records []Record
	err = r.session.New().
		Select(dialect.Columns(Table, "migration_id", "migration_name", "migration_batch", "date_applied")).
		From(Table).
		IncludeArchived().
		OrderByAsc("migration_id").
		AllIntoContext(ctx, &records)
	return records, err
}
