package dialect

import (
	"strings"

	"github.com/biyonik/novasql/internal/validation"
)

// Operator, bir koşul yaprağının operatörüdür.
type Operator string

const (
	OpEq        Operator = "="
	OpNotEq     Operator = "!="
	OpNe        Operator = "<>"
	OpLt        Operator = "<"
	OpLte       Operator = "<="
	OpGt        Operator = ">"
	OpGte       Operator = ">="
	OpIn        Operator = "IN"
	OpNotIn     Operator = "NOT IN"
	OpLike      Operator = "LIKE"
	OpNotLike   Operator = "NOT LIKE"
	OpIsNull    Operator = "IS NULL"
	OpIsNotNull Operator = "IS NOT NULL"
)

// Category, operatörün render kuralını belirler.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryComparison
	CategoryMembership
	CategoryPattern
	CategoryNullTest
)

// Category, operatörü beyaz listeye göre sınıflandırır.
func (o Operator) Category() Category {
	switch validation.Classify(string(o)) {
	case validation.ClassComparison:
		return CategoryComparison
	case validation.ClassMembership:
		return CategoryMembership
	case validation.ClassPattern:
		return CategoryPattern
	case validation.ClassNullTest:
		return CategoryNullTest
	default:
		return CategoryUnknown
	}
}

// Normalize, operatörün büyük harfli kanonik biçimini döndürür.
func (o Operator) Normalize() (Operator, error) {
	n, err := validation.NormalizeOperator(string(o))
	if err != nil {
		return "", err
	}
	return Operator(n), nil
}

// Combinator, bir grubun çocuklarını bağlayan kelimedir.
type Combinator string

const (
	CombineAnd Combinator = "AND"
	CombineOr  Combinator = "OR"
)

// Condition, kapalı bir koşul ağacı düğümüdür. Varyantlar: Leaf, Group,
// ColumnLeaf, ArchivedFilter ve True() ile elde edilen sabit doğru.
type Condition interface {
	isCondition()
}

// Leaf, bir kolonu isimli bir parametreyle karşılaştırır.
//
// Values boş değilse Where çağrısı bu değerleri Bind tabanı altında
// parametre olarak kaydeder (bkz. InValues).
type Leaf struct {
	Op     Operator
	Column string
	Bind   string
	Values []any
}

// Group, çocuklarını tek bir bağlaçla birleştirip parantez içine alır.
type Group struct {
	Combinator Combinator
	Children   []Condition
}

// ColumnLeaf, iki kolonu karşılaştırır. JOIN koşullarının yaprağıdır.
type ColumnLeaf struct {
	Op    Operator
	Left  string
	Right string
}

// ArchivedFilter, bir tablo referansının meta kolonunda arşivlenmiş olarak
// işaretlenmemiş satırları seçer. Derleme sırasında gramer tarafından eklenir.
type ArchivedFilter struct {
	Ref  string
	Bind string
}

type truth struct{}

func (Leaf) isCondition()           {}
func (Group) isCondition()          {}
func (ColumnLeaf) isCondition()     {}
func (ArchivedFilter) isCondition() {}
func (truth) isCondition()          {}

// BindName, bağlama adını ":" önekiyle normalize eder.
func BindName(name string) string {
	if strings.HasPrefix(name, ":") {
		return name
	}
	return ":" + name
}

// bindSafe, parametre adında kullanılamayan karakterleri "_" ile değiştirir.
func bindSafe(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func defaultBind(column string) string {
	return ":" + bindSafe(column)
}

// Cmp, "column op :column" yaprağı oluşturur.
func Cmp(op Operator, column string) Condition {
	return Leaf{Op: op, Column: column, Bind: defaultBind(column)}
}

// CmpAs, açık bir bağlama adıyla "column op :bind" yaprağı oluşturur.
func CmpAs(op Operator, bind, column string) Condition {
	return Leaf{Op: op, Column: column, Bind: BindName(bind)}
}

// Eq, Cmp(OpEq, column) kısayoludur.
func Eq(column string) Condition {
	return Cmp(OpEq, column)
}

// EqAs, CmpAs(OpEq, bind, column) kısayoludur.
func EqAs(bind, column string) Condition {
	return CmpAs(OpEq, bind, column)
}

// In, "column IN (...)" yaprağı oluşturur. Liste, adı ":column_" ile başlayan
// kayıtlı parametrelerden kayıt sırasıyla oluşur; değerlerin önceden
// AddParameters ya da Where parametreleriyle aynı taban adla kaydedilmiş
// olması gerekir.
func In(column string) Condition {
	return Leaf{Op: OpIn, Column: column, Bind: defaultBind(column)}
}

// InAs, In'in açık bağlama adlı biçimidir.
func InAs(bind, column string) Condition {
	return Leaf{Op: OpIn, Column: column, Bind: BindName(bind)}
}

// NotIn, In'in NOT IN biçimidir.
func NotIn(column string) Condition {
	return Leaf{Op: OpNotIn, Column: column, Bind: defaultBind(column)}
}

// NotInAs, NotIn'in açık bağlama adlı biçimidir.
func NotInAs(bind, column string) Condition {
	return Leaf{Op: OpNotIn, Column: column, Bind: BindName(bind)}
}

// InValues, değer listesini koşulun kendisinde taşır. Where bu değerleri
// ":column_0", ":column_1", ... olarak kaydeder.
func InValues(column string, values ...any) Condition {
	return Leaf{Op: OpIn, Column: column, Bind: defaultBind(column), Values: values}
}

// NotInValues, InValues'un NOT IN biçimidir.
func NotInValues(column string, values ...any) Condition {
	return Leaf{Op: OpNotIn, Column: column, Bind: defaultBind(column), Values: values}
}

// IsNull, "column IS NULL" yaprağı oluşturur.
func IsNull(column string) Condition {
	return Leaf{Op: OpIsNull, Column: column}
}

// IsNotNull, "column IS NOT NULL" yaprağı oluşturur.
func IsNotNull(column string) Condition {
	return Leaf{Op: OpIsNotNull, Column: column}
}

// And, çocukları AND ile birleştiren bir grup oluşturur.
func And(children ...Condition) Condition {
	return Group{Combinator: CombineAnd, Children: children}
}

// Or, çocukları OR ile birleştiren bir grup oluşturur.
func Or(children ...Condition) Condition {
	return Group{Combinator: CombineOr, Children: children}
}

// True, koşulsuz doğruyu temsil eder. Yalnızca SELECT'te "1" olarak render
// edilir; INSERT/UPDATE/DELETE'te hiçbir şey üretmez.
func True() Condition {
	return truth{}
}

// On, "left = right" JOIN yaprağı oluşturur.
func On(left, right string) Condition {
	return ColumnLeaf{Op: OpEq, Left: left, Right: right}
}

// OnOp, verilen operatörle iki kolonu karşılaştırır.
func OnOp(op Operator, left, right string) Condition {
	return ColumnLeaf{Op: op, Left: left, Right: right}
}

// OnLike, "left LIKE CONCAT('%', right, '%')" yaprağı oluşturur.
func OnLike(left, right string) Condition {
	return ColumnLeaf{Op: OpLike, Left: left, Right: right}
}

// OnNotLike, OnLike'ın NOT LIKE biçimidir.
func OnNotLike(left, right string) Condition {
	return ColumnLeaf{Op: OpNotLike, Left: left, Right: right}
}

// RegisterValues, ağaçtaki değer taşıyan yaprakların değerlerini p'ye
// kaydeder.
func RegisterValues(c Condition, p *Params) {
	switch n := c.(type) {
	case Leaf:
		if len(n.Values) > 0 {
			p.Add(n.Bind, n.Values)
		}
	case Group:
		for _, child := range n.Children {
			RegisterValues(child, p)
		}
	}
}
