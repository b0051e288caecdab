// Package dialect, builder durumunu (Statement) ve koşul ağaçlarını SQL metnine
// çeviren saf katmandır. Buradaki hiçbir fonksiyon I/O yapmaz; aynı girdiden
// her zaman byte düzeyinde aynı çıktıyı üretir.
//
// Bağlanacak parametreler ":name" biçiminde isimlendirilir. İsimli SQL'in
// sürücüye uygun konumsal biçime çevrilmesi üst paketin işidir.
package dialect

import "errors"

// Grammar, bir Statement'ı isimli SQL metnine ve bağlanacak parametrelere derler.
type Grammar interface {
	// Name, gramerin kimliğini döndürür (örn. "mysql").
	Name() string

	// Compile, statement'ı derler. Dönen Params, statement'ın kendi
	// parametrelerinin bir kopyasıdır; derleme sırasında eklenen bağlamalar
	// (insert/update değerleri, arşiv filtresi) yalnızca bu kopyada bulunur.
	Compile(st *Statement) (string, *Params, error)
}

// BaseGrammar, gramer implementasyonları için ortak alanları taşır.
type BaseGrammar struct {
	name string
}

// Name, gramerin adını döndürür.
func (g *BaseGrammar) Name() string {
	return g.name
}

// Kind, aktif operasyon modudur. Sıfır değeri SELECT'tir.
type Kind int

const (
	KindSelect Kind = iota
	KindInsert
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	default:
		return "select"
	}
}

// Mutating, operasyonun veri değiştirip değiştirmediğini bildirir.
func (k Kind) Mutating() bool {
	return k != KindSelect
}

// Shape, bir SELECT'in sonuç biçimidir.
type Shape int

const (
	ShapeRows Shape = iota
	ShapeCount
	ShapeExists
)

// OrderDirection, sıralama yönüdür.
type OrderDirection string

const (
	Asc  OrderDirection = "ASC"
	Desc OrderDirection = "DESC"
)

// IsValid, yönün geçerli olup olmadığını kontrol eder.
func (d OrderDirection) IsValid() bool {
	return d == Asc || d == Desc
}

// OrderClause, ORDER BY ifadesinin bir elemanıdır.
type OrderClause struct {
	Column    string
	Direction OrderDirection
}

// JoinType, JOIN türünü belirtir.
type JoinType string

const (
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinInner JoinType = "INNER"
	JoinFull  JoinType = "FULL OUTER"
)

// JoinClause, tek bir JOIN'i temsil eder.
type JoinClause struct {
	Type  JoinType
	Table string
	On    Condition
}

// Sentinel errors for the dialect layer.
var (
	ErrNoTable         = errors.New("novasql: no table specified")
	ErrNoColumns       = errors.New("novasql: no columns specified")
	ErrEmptyWhereIn    = errors.New("novasql: membership condition matched no registered parameters")
	ErrInvalidOperator = errors.New("novasql: invalid SQL operator")
	ErrInvalidJoin     = errors.New("novasql: invalid join condition")
	ErrUnknownNode     = errors.New("novasql: unknown condition node")
)
