package novasql

import (
	"fmt"
	"strings"

	"github.com/biyonik/novasql/dialect"
)

// Builder, tek bir SQL statement'ını akıcı (fluent) çağrılarla biriktirir.
//
// Zincir metotları yalnızca durumu değiştirir; I/O yapan tek yer
// terminallerdir (All, One, Count, Exists, Column, ColumnAll, Execute).
// Her terminal birikmiş durumu değişmez bir Plan'a derler, Builder'ı
// sıfırlar ve planı session üzerinde bir kez çalıştırır. Derleme ya da
// çalıştırma hata verse bile Builder bir sonraki statement için temizdir.
//
// Builder eşzamanlı kullanım için güvenli değildir; goroutine başına ayrı
// bir Builder kullanın ya da Clone() ile çoğaltın.
//
//	rows, err := s.New().
//	    Select(dialect.Columns("o", "id", "total"), dialect.Columns("u").As("customer", "name")).
//	    From("orders o").
//	    LeftJoin("users u", dialect.On("u.id", "o.user_id")).
//	    Where(dialect.InValues("o.status", "paid", "shipped")).
//	    OrderBy("o.id", dialect.Desc).
//	    Limit(20).
//	    All()
type Builder struct {
	session *Session
	grammar dialect.Grammar
	appCtx  AppContext

	st              *dialect.Statement
	includeArchived bool

	// Accumulated error
	err error
}

func newBuilder(s *Session, g dialect.Grammar, appCtx AppContext) *Builder {
	return &Builder{
		session: s,
		grammar: g,
		appCtx:  appCtx,
		st:      dialect.NewStatement(),
	}
}

// Select, SELECT modunu etkinleştirir ve projeksiyonu ayarlar. Parametresiz
// çağrı "*" üretir.
//
//	b.Select(dialect.Columns("users", "id", "email"), dialect.Columns("teams"))
//	// SELECT users.id, users.email, teams.* ...
func (b *Builder) Select(cols ...dialect.TableColumns) *Builder {
	b.st.Kind = dialect.KindSelect
	b.st.Distinct = false
	b.st.Select = append([]dialect.TableColumns(nil), cols...)
	return b
}

// SelectDistinct, Select'in DISTINCT biçimidir.
func (b *Builder) SelectDistinct(cols ...dialect.TableColumns) *Builder {
	b.Select(cols...)
	b.st.Distinct = true
	return b
}

// Insert, INSERT modunu etkinleştirir. Değerler ":insert_<kolon>" adlarıyla bağlanır.
func (b *Builder) Insert(table string, values map[string]any) *Builder {
	b.st.Kind = dialect.KindInsert
	b.st.Target = table
	b.st.Values = copyValues(values)
	return b
}

// Update, UPDATE modunu etkinleştirir. Değerler ":update_<kolon>" adlarıyla bağlanır.
func (b *Builder) Update(table string, values map[string]any) *Builder {
	b.st.Kind = dialect.KindUpdate
	b.st.Target = table
	b.st.Values = copyValues(values)
	return b
}

// Delete, DELETE modunu etkinleştirir. Silinecek tablo From ile verilir.
func (b *Builder) Delete() *Builder {
	b.st.Kind = dialect.KindDelete
	return b
}

// From, kaynak tabloyu ayarlar. "table", "table alias" ve "(subquery) alias"
// biçimleri kabul edilir.
func (b *Builder) From(table string) *Builder {
	b.st.Table = table
	return b
}

// Where, temel koşul ağacını değiştirir (eklemez). params, koşulun
// referans verdiği bağlama değerlerini kaydeder.
//
//	b.Where(dialect.Or(dialect.Eq("a"), dialect.Eq("b")), novasql.P{"a": 1, "b": 2})
//	// WHERE (a = :a OR b = :b)
func (b *Builder) Where(cond dialect.Condition, params ...map[string]any) *Builder {
	b.st.Where = cond
	b.register(cond, params)
	return b
}

// AndWhere, AND ile eklenecek bağımsız bir ağaç ekler.
func (b *Builder) AndWhere(cond dialect.Condition, params ...map[string]any) *Builder {
	b.st.And = append(b.st.And, cond)
	b.register(cond, params)
	return b
}

// OrWhere, OR ile eklenecek bağımsız bir ağaç ekler.
func (b *Builder) OrWhere(cond dialect.Condition, params ...map[string]any) *Builder {
	b.st.Or = append(b.st.Or, cond)
	b.register(cond, params)
	return b
}

func (b *Builder) register(cond dialect.Condition, params []map[string]any) {
	dialect.RegisterValues(cond, b.st.Params)
	for _, p := range params {
		b.st.Params.AddAll(p)
	}
}

// LeftJoin, LEFT JOIN ekler.
func (b *Builder) LeftJoin(table string, on dialect.Condition) *Builder {
	return b.join(dialect.JoinLeft, table, on)
}

// RightJoin, RIGHT JOIN ekler.
func (b *Builder) RightJoin(table string, on dialect.Condition) *Builder {
	return b.join(dialect.JoinRight, table, on)
}

// InnerJoin, INNER JOIN ekler.
func (b *Builder) InnerJoin(table string, on dialect.Condition) *Builder {
	return b.join(dialect.JoinInner, table, on)
}

// FullJoin, FULL OUTER JOIN ekler.
func (b *Builder) FullJoin(table string, on dialect.Condition) *Builder {
	return b.join(dialect.JoinFull, table, on)
}

func (b *Builder) join(t dialect.JoinType, table string, on dialect.Condition) *Builder {
	b.st.Joins = append(b.st.Joins, dialect.JoinClause{Type: t, Table: table, On: on})
	return b
}

// AddParameters, bağlama değerlerini kaydeder. Liste ve harita değerleri
// "base_0", "base_key" biçiminde düzleştirilir; IN koşulları bu adları kullanır.
//
//	b.AddParameters(novasql.P{"status": []string{"active", "pending"}}).
//	    Where(dialect.In("status"))
//	// WHERE status IN (:status_0,:status_1)
func (b *Builder) AddParameters(params map[string]any) *Builder {
	b.st.Params.AddAll(params)
	return b
}

// OrderBy, ORDER BY ekler. Aynı kolon tekrar verilirse yönü güncellenir,
// sırası korunur.
func (b *Builder) OrderBy(column string, direction dialect.OrderDirection) *Builder {
	direction = dialect.OrderDirection(strings.ToUpper(string(direction)))
	if !direction.IsValid() {
		b.setErr(fmt.Errorf("%w: %q", ErrInvalidDirection, direction))
		return b
	}
	for i, o := range b.st.OrderBy {
		if o.Column == column {
			b.st.OrderBy[i].Direction = direction
			return b
		}
	}
	b.st.OrderBy = append(b.st.OrderBy, dialect.OrderClause{Column: column, Direction: direction})
	return b
}

// OrderByAsc, artan sırada ORDER BY ekler.
func (b *Builder) OrderByAsc(column string) *Builder {
	return b.OrderBy(column, dialect.Asc)
}

// OrderByDesc, azalan sırada ORDER BY ekler.
func (b *Builder) OrderByDesc(column string) *Builder {
	return b.OrderBy(column, dialect.Desc)
}

// GroupBy, GROUP BY kolonları ekler.
func (b *Builder) GroupBy(columns ...string) *Builder {
	b.st.GroupBy = append(b.st.GroupBy, columns...)
	return b
}

// Limit, LIMIT ayarlar. 0 ya da negatif değer LIMIT'i kaldırır.
func (b *Builder) Limit(n int) *Builder {
	b.st.Limit = n
	return b
}

// Offset, OFFSET ayarlar. OFFSET yalnızca LIMIT ile birlikte yazılır.
func (b *Builder) Offset(n int) *Builder {
	b.st.Offset = n
	return b
}

// ForPage, sayfa bazlı limit ve offset belirler.
func (b *Builder) ForPage(page, perPage int) *Builder {
	p := NewPagination(page, perPage, 0)
	return b.Limit(p.PerPage).Offset(p.Offset())
}

// IncludeArchived, bu statement için arşiv filtresini kapatır. Katalog
// sorguları gibi meta kolonu olmayan tablolar için kullanılır.
func (b *Builder) IncludeArchived() *Builder {
	b.includeArchived = true
	return b
}

// SetRawSQL, akıcı durumun yerine geçecek ham SQL ayarlar. Parametreler
// AddParameters ile aynı şekilde kaydedilir.
func (b *Builder) SetRawSQL(query string, params ...map[string]any) *Builder {
	b.st.Raw = query
	for _, p := range params {
		b.st.Params.AddAll(p)
	}
	return b
}

// Clone, Builder'ın bağımsız bir kopyasını oluşturur.
func (b *Builder) Clone() *Builder {
	c := *b
	c.st = b.st.Clone()
	return &c
}

// Reset, sorgu durumunu temizler (session ve gramer hariç).
func (b *Builder) Reset() *Builder {
	b.st = dialect.NewStatement()
	b.includeArchived = false
	b.err = nil
	return b
}

// Err, birikmiş hatayı döndürür.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// When, koşullu olarak callback uygular.
func (b *Builder) When(condition bool, fn func(*Builder)) *Builder {
	if condition {
		fn(b)
	}
	return b
}

// Unless, When'in tersidir.
func (b *Builder) Unless(condition bool, fn func(*Builder)) *Builder {
	return b.When(!condition, fn)
}

// Statement, birikmiş durumun bir kopyasını döndürür.
func (b *Builder) Statement() *dialect.Statement {
	return b.st.Clone()
}

func copyValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
