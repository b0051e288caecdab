package novasql

import (
	"context"
	"database/sql"

	"github.com/biyonik/novasql/dialect"
)

// plan, birikmiş durumu derler. Arşiv filtresi serving bağlamındaki
// SELECT'lere derleme sırasında eklenir.
func (b *Builder) plan(shape dialect.Shape, op string) (*Plan, error) {
	if b.err != nil {
		return nil, b.err
	}
	st := b.st.Clone()
	st.Shape = shape
	st.Archived = b.appCtx.FiltersArchived() && !b.includeArchived
	return compilePlan(b.grammar, st, op)
}

// take, planı derler ve hata olsun olmasın Builder'ı sıfırlar.
func (b *Builder) take(shape dialect.Shape, op string) (*Session, *Plan, error) {
	plan, err := b.plan(shape, op)
	b.Reset()
	if err != nil {
		return nil, nil, err
	}
	if b.session == nil {
		return nil, nil, ErrNoSession
	}
	return b.session, plan, nil
}

// ToSQL, konumsal SQL metnini ve argümanları döndürür. Builder sıfırlanmaz.
func (b *Builder) ToSQL() (string, []any, error) {
	plan, err := b.plan(dialect.ShapeRows, "sql")
	if err != nil {
		return "", nil, err
	}
	return plan.SQL, plan.Args, nil
}

// GetRawSQL, çalıştırılacak isimli SQL metnini döndürür. reset true ise
// Builder sıfırlanır.
func (b *Builder) GetRawSQL(reset bool) (string, error) {
	plan, err := b.plan(dialect.ShapeRows, "sql")
	if reset {
		b.Reset()
	}
	if err != nil {
		return "", err
	}
	return plan.Named, nil
}

// ExistsContext, statement'ı SELECT EXISTS (...) ile sarar. Eşleşme
// olmadığında false döner.
func (b *Builder) ExistsContext(ctx context.Context) (bool, error) {
	s, plan, err := b.take(dialect.ShapeExists, "exists")
	if err != nil {
		return false, err
	}

	var v any
	err = s.query(ctx, plan, func(rows *sql.Rows) error {
		var err error
		v, _, err = scanFirst(rows)
		return err
	})
	if err != nil {
		return false, err
	}
	return asBool(v), nil
}

// Exists, ExistsContext'in context.Background() versiyonudur.
func (b *Builder) Exists() (bool, error) {
	return b.ExistsContext(context.Background())
}

// CountContext, projeksiyonu COUNT(*) ile değiştirir ve sonucu döndürür.
func (b *Builder) CountContext(ctx context.Context) (int64, error) {
	s, plan, err := b.take(dialect.ShapeCount, "count")
	if err != nil {
		return 0, err
	}

	var n int64
	err = s.query(ctx, plan, func(rows *sql.Rows) error {
		v, _, err := scanFirst(rows)
		if err != nil {
			return err
		}
		n, err = asInt64(v)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Count, CountContext'in context.Background() versiyonudur.
func (b *Builder) Count() (int64, error) {
	return b.CountContext(context.Background())
}

// AllContext, eşleşen tüm satırları döndürür.
func (b *Builder) AllContext(ctx context.Context) ([]Row, error) {
	return b.rows(ctx, "all", 0)
}

// All, AllContext'in context.Background() versiyonudur.
func (b *Builder) All() ([]Row, error) {
	return b.AllContext(context.Background())
}

// OneContext, ilk satırı döndürür. Eşleşme yoksa boş bir Row (Len() == 0) döner.
func (b *Builder) OneContext(ctx context.Context) (Row, error) {
	rows, err := b.rows(ctx, "one", 1)
	if err != nil || len(rows) == 0 {
		return Row{}, err
	}
	return rows[0], nil
}

// One, OneContext'in context.Background() versiyonudur.
func (b *Builder) One() (Row, error) {
	return b.OneContext(context.Background())
}

func (b *Builder) rows(ctx context.Context, op string, limit int) ([]Row, error) {
	s, plan, err := b.take(dialect.ShapeRows, op)
	if err != nil {
		return nil, err
	}

	var out []Row
	err = s.query(ctx, plan, func(rows *sql.Rows) error {
		var err error
		out, err = scanRows(rows, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ColumnContext, ilk satırın ilk kolonunu metin olarak döndürür. Satır yoksa
// ya da değer NULL ise "" döner.
func (b *Builder) ColumnContext(ctx context.Context) (string, error) {
	s, plan, err := b.take(dialect.ShapeRows, "column")
	if err != nil {
		return "", err
	}

	var v any
	err = s.query(ctx, plan, func(rows *sql.Rows) error {
		var err error
		v, _, err = scanFirst(rows)
		return err
	})
	if err != nil {
		return "", err
	}
	return asString(v), nil
}

// Column, ColumnContext'in context.Background() versiyonudur.
func (b *Builder) Column() (string, error) {
	return b.ColumnContext(context.Background())
}

// ColumnAllContext, her satırın ilk kolonunu metin olarak döndürür.
func (b *Builder) ColumnAllContext(ctx context.Context) ([]string, error) {
	s, plan, err := b.take(dialect.ShapeRows, "column all")
	if err != nil {
		return nil, err
	}

	out := make([]string, 0)
	err = s.query(ctx, plan, func(rows *sql.Rows) error {
		for {
			v, ok, err := scanFirst(rows)
			if err != nil || !ok {
				return err
			}
			out = append(out, asString(v))
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ColumnAll, ColumnAllContext'in context.Background() versiyonudur.
func (b *Builder) ColumnAll() ([]string, error) {
	return b.ColumnAllContext(context.Background())
}

// ExecuteResultContext, INSERT/UPDATE/DELETE ya da ham DDL çalıştırır.
// Deadlock hatalarında session politikasına göre tekrar denenir.
func (b *Builder) ExecuteResultContext(ctx context.Context) (*QueryResult, error) {
	s, plan, err := b.take(dialect.ShapeRows, "execute")
	if err != nil {
		return nil, err
	}
	return s.exec(ctx, plan)
}

// ExecuteContext, ExecuteResultContext'i çalıştırır ve etkilenen satır
// sayısını döndürür.
func (b *Builder) ExecuteContext(ctx context.Context) (int64, error) {
	res, err := b.ExecuteResultContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Execute, ExecuteContext'in context.Background() versiyonudur.
func (b *Builder) Execute() (int64, error) {
	return b.ExecuteContext(context.Background())
}

// AllIntoContext, eşleşen satırları dest'e (*[]T ya da *[]*T) tarar.
//
//	var users []User
//	err := s.New().Select().From("users").AllIntoContext(ctx, &users)
func (b *Builder) AllIntoContext(ctx context.Context, dest any) error {
	s, plan, err := b.take(dialect.ShapeRows, "all")
	if err != nil {
		return err
	}
	return s.query(ctx, plan, func(rows *sql.Rows) error {
		return s.scanner.ScanRows(rows, dest)
	})
}

// OneIntoContext, ilk satırı dest struct'ına tarar. Eşleşme yoksa ErrNoRows
// ile sarılmış bir hata döner.
func (b *Builder) OneIntoContext(ctx context.Context, dest any) error {
	s, plan, err := b.take(dialect.ShapeRows, "one")
	if err != nil {
		return err
	}
	return s.query(ctx, plan, func(rows *sql.Rows) error {
		return s.scanner.ScanOne(rows, dest)
	})
}

// PaginateContext, toplam kaydı sayar ve istenen sayfanın satırlarını getirir.
// ORDER BY ve LIMIT sayım sorgusuna taşınmaz.
func (b *Builder) PaginateContext(ctx context.Context, page, perPage int) (*Page, error) {
	counter := b.Clone()
	counter.st.OrderBy = nil
	counter.st.Limit = 0
	counter.st.Offset = 0

	total, err := counter.CountContext(ctx)
	if err != nil {
		b.Reset()
		return nil, err
	}

	p := NewPagination(page, perPage, total)
	rows, err := b.Limit(p.PerPage).Offset(p.Offset()).AllContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Page{Pagination: p, Rows: rows}, nil
}
