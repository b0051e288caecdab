package dialect

import (
	"fmt"
	"strings"
)

// archivedPattern, meta kolonunda arşivlenmiş satırları işaretleyen metindir.
const archivedPattern = `%"archived":true%`

// formatter, koşul ağaçlarını render eder. Durum tutmaz; params yalnızca okunur.
type formatter struct {
	kind   Kind
	params *Params
}

// FormatCondition, c'yi verilen operasyon türü için WHERE parçası olarak
// render eder. Boş sonuç "bu ağaç hiçbir şey üretmedi" demektir.
func FormatCondition(c Condition, kind Kind, params *Params) (string, error) {
	return formatter{kind: kind, params: params}.where(c)
}

// FormatOn, bir JOIN ON ağacını render eder.
func FormatOn(c Condition) (string, error) {
	return formatter{}.on(c)
}

// FormatJoin, "TYPE JOIN table ON ..." metnini üretir.
func FormatJoin(j JoinClause) (string, error) {
	on, err := FormatOn(j.On)
	if err != nil {
		return "", err
	}
	if on == "" || j.Table == "" {
		return "", fmt.Errorf("%w: join on %q has no condition", ErrInvalidJoin, j.Table)
	}
	return string(j.Type) + " JOIN " + j.Table + " ON " + on, nil
}

func (f formatter) where(c Condition) (string, error) {
	switch n := c.(type) {
	case nil:
		return "", nil
	case Leaf:
		return f.leaf(n)
	case Group:
		return f.group(n, f.where)
	case ColumnLeaf:
		return f.columnLeaf(n)
	case ArchivedFilter:
		col := n.Ref + ".meta"
		return "(" + col + " IS NULL OR " + col + " NOT LIKE " + n.Bind + ")", nil
	case truth:
		if f.kind == KindSelect {
			return "1", nil
		}
		return "", nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownNode, c)
	}
}

func (f formatter) on(c Condition) (string, error) {
	switch n := c.(type) {
	case ColumnLeaf:
		return f.columnLeaf(n)
	case Group:
		return f.group(n, f.on)
	default:
		return "", fmt.Errorf("%w: %T is not a column comparison", ErrInvalidJoin, c)
	}
}

func (f formatter) leaf(n Leaf) (string, error) {
	op, err := n.Op.Normalize()
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperator, n.Op)
	}

	switch op.Category() {
	case CategoryComparison:
		if v, ok := f.params.Lookup(n.Bind); ok && NullValue(v) {
			switch op {
			case OpEq:
				return n.Column + " IS NULL", nil
			case OpNotEq, OpNe:
				return n.Column + " IS NOT NULL", nil
			}
		}
		return n.Column + " " + string(op) + " " + n.Bind, nil
	case CategoryMembership:
		names := f.params.WithPrefix(n.Bind + "_")
		if len(names) == 0 {
			return "", fmt.Errorf("%w: %s %s", ErrEmptyWhereIn, n.Column, op)
		}
		return n.Column + " " + string(op) + " (" + strings.Join(names, ",") + ")", nil
	case CategoryPattern:
		return "", fmt.Errorf("%w: %s is only valid in join conditions", ErrInvalidOperator, op)
	case CategoryNullTest:
		return n.Column + " " + string(op), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOperator, n.Op)
	}
}

func (f formatter) columnLeaf(n ColumnLeaf) (string, error) {
	op, err := n.Op.Normalize()
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperator, n.Op)
	}
	switch op.Category() {
	case CategoryComparison:
		return n.Left + " " + string(op) + " " + n.Right, nil
	case CategoryPattern:
		return n.Left + " " + string(op) + " CONCAT('%', " + n.Right + ", '%')", nil
	default:
		return "", fmt.Errorf("%w: operator %s cannot compare columns", ErrInvalidJoin, op)
	}
}

func (f formatter) group(n Group, render func(Condition) (string, error)) (string, error) {
	comb := Combinator(strings.ToUpper(string(n.Combinator)))
	if comb != CombineAnd && comb != CombineOr {
		return "", fmt.Errorf("%w: combinator %q", ErrInvalidOperator, n.Combinator)
	}

	parts := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		s, err := render(child)
		if err != nil {
			return "", err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " "+string(comb)+" ") + ")", nil
}
