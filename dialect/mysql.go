package dialect

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/biyonik/novasql/internal/validation"
)

// MySQLGrammar, Statement'ları MySQL sözdizimine derler.
//
// Tanımlayıcılar tırnaklanmadan yazılır; bu, kataloğa (INFORMATION_SCHEMA)
// yapılan sorgularda ve türetilmiş tablolarda metnin olduğu gibi kalmasını
// sağlar. Strict modda her tanımlayıcı önce allow-list'ten geçirilir.
type MySQLGrammar struct {
	BaseGrammar
	strict bool
}

// MySQL, yeni bir MySQL grameri oluşturur.
func MySQL() *MySQLGrammar {
	return &MySQLGrammar{BaseGrammar: BaseGrammar{name: "mysql"}}
}

// Strict, tanımlayıcı kontrolü açık ya da kapalı bir kopya döndürür.
func (g *MySQLGrammar) Strict(on bool) *MySQLGrammar {
	c := *g
	c.strict = on
	return &c
}

// Compile, Grammar arayüzünü uygular.
//
// Parçalar şu sırayla birleştirilir: operasyon, JOIN'ler, WHERE, GROUP BY,
// ORDER BY, LIMIT/OFFSET. Boş parçalar atlanır. Raw SQL ayarlıysa diğer her
// şeyin önüne geçer.
func (g *MySQLGrammar) Compile(st *Statement) (string, *Params, error) {
	if st == nil {
		return "", nil, ErrNoTable
	}
	params := st.Params.Clone()
	if st.Raw != "" {
		return st.Raw, params, nil
	}

	if g.strict {
		if err := checkIdentifiers(st); err != nil {
			return "", nil, err
		}
	}

	if st.Kind == KindInsert {
		q, err := g.compileInsert(st, params)
		return q, params, err
	}

	var (
		head string
		err  error
	)
	switch st.Kind {
	case KindUpdate:
		head, err = g.compileUpdate(st, params)
	case KindDelete:
		head, err = g.compileDelete(st)
	default:
		head, err = g.compileSelect(st)
	}
	if err != nil {
		return "", nil, err
	}

	parts := []string{head}
	if st.Kind != KindUpdate {
		joins, err := g.compileJoins(st.Joins)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, joins)
	}

	where, err := g.compileWhere(st, params)
	if err != nil {
		return "", nil, err
	}
	parts = append(parts, where, g.compileGroup(st), g.compileOrder(st), g.compileLimit(st))

	query := joinNonEmpty(parts)
	if st.Kind == KindSelect && st.Shape == ShapeExists {
		query = "SELECT EXISTS (" + query + ")"
	}
	return query, params, nil
}

func (g *MySQLGrammar) compileSelect(st *Statement) (string, error) {
	if st.Table == "" {
		return "", ErrNoTable
	}

	var b strings.Builder
	switch st.Shape {
	case ShapeCount:
		b.WriteString("SELECT COUNT(*)")
	case ShapeExists:
		b.WriteString("SELECT 1")
	default:
		b.WriteString("SELECT ")
		if st.Distinct {
			b.WriteString("DISTINCT ")
		}
		b.WriteString(projection(st.Select))
	}
	b.WriteString(" FROM ")
	b.WriteString(st.Table)
	return b.String(), nil
}

func projection(groups []TableColumns) string {
	cols := make([]string, 0, len(groups))
	for _, tc := range groups {
		if len(tc.Columns) == 0 {
			cols = append(cols, tc.Table+".*")
			continue
		}
		for _, c := range tc.Columns {
			col := tc.Table + "." + c.Name
			if c.Alias != "" && c.Alias != c.Name {
				col += " AS " + c.Alias
			}
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		return "*"
	}
	return strings.Join(cols, ", ")
}

// compileInsert, değerleri ":insert_<col>" adlarıyla bağlar. İlk kolon
// üzerinden ON DUPLICATE KEY UPDATE eklenir; var olan satır değişmeden kalır.
func (g *MySQLGrammar) compileInsert(st *Statement, params *Params) (string, error) {
	if st.Target == "" {
		return "", ErrNoTable
	}
	if len(st.Values) == 0 {
		return "", ErrNoColumns
	}

	cols := sortedKeys(st.Values)
	binds := make([]string, len(cols))
	for i, col := range cols {
		binds[i] = ":insert_" + bindSafe(col)
		params.Set(binds[i], st.Values[col])
	}

	first := cols[0]
	return "INSERT INTO " + st.Target +
		" (" + strings.Join(cols, ", ") + ")" +
		" VALUES (" + strings.Join(binds, ", ") + ")" +
		" ON DUPLICATE KEY UPDATE " + first + "=" + first, nil
}

func (g *MySQLGrammar) compileUpdate(st *Statement, params *Params) (string, error) {
	if st.Target == "" {
		return "", ErrNoTable
	}
	if len(st.Values) == 0 {
		return "", ErrNoColumns
	}

	cols := sortedKeys(st.Values)
	sets := make([]string, len(cols))
	for i, col := range cols {
		bind := ":update_" + bindSafe(col)
		params.Set(bind, st.Values[col])
		sets[i] = col + " = " + bind
	}

	joins, err := g.compileJoins(st.Joins)
	if err != nil {
		return "", err
	}
	return joinNonEmpty([]string{"UPDATE " + st.Target, joins, "SET " + strings.Join(sets, ", ")}), nil
}

// compileDelete, JOIN varsa silinecek tabloyu açıkça adlandırır.
func (g *MySQLGrammar) compileDelete(st *Statement) (string, error) {
	if st.Table == "" {
		return "", ErrNoTable
	}
	if len(st.Joins) > 0 {
		return "DELETE " + validation.RefName(st.Table) + " FROM " + st.Table, nil
	}
	return "DELETE FROM " + st.Table, nil
}

func (g *MySQLGrammar) compileJoins(joins []JoinClause) (string, error) {
	parts := make([]string, 0, len(joins))
	for _, j := range joins {
		s, err := FormatJoin(j)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " "), nil
}

// compileWhere, temel koşulu, ardından her AND ağacını " AND " ile, sonra her
// OR ağacını " OR " ile düz biçimde ekler. Temel koşul boşsa ilk boş olmayan
// ağaç cümleyi açar.
func (g *MySQLGrammar) compileWhere(st *Statement, params *Params) (string, error) {
	f := formatter{kind: st.Kind, params: params}

	var b strings.Builder
	base, err := f.where(st.Where)
	if err != nil {
		return "", err
	}
	b.WriteString(base)

	ands := st.And
	if st.Archived && st.Kind == KindSelect {
		ands = append(append([]Condition(nil), st.And...), archivedFilters(st, params)...)
	}

	appendTrees := func(trees []Condition, glue string) error {
		for _, c := range trees {
			s, err := f.where(c)
			if err != nil {
				return err
			}
			if s == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString(glue)
			}
			b.WriteString(s)
		}
		return nil
	}
	if err := appendTrees(ands, " AND "); err != nil {
		return "", err
	}
	if err := appendTrees(st.Or, " OR "); err != nil {
		return "", err
	}

	if b.Len() == 0 {
		return "", nil
	}
	return "WHERE " + b.String(), nil
}

// archivedFilters, FROM tablosu ve her JOIN için bir ArchivedFilter üretir
// ve desen parametresini params'a kaydeder.
func archivedFilters(st *Statement, params *Params) []Condition {
	refs := st.refs()
	out := make([]Condition, 0, len(refs))
	for _, table := range refs {
		ref := validation.RefName(table)
		bind := ":meta_archived_" + bindSafe(ref)
		params.Set(bind, archivedPattern)
		out = append(out, ArchivedFilter{Ref: ref, Bind: bind})
	}
	return out
}

func (g *MySQLGrammar) compileGroup(st *Statement) string {
	if len(st.GroupBy) == 0 {
		return ""
	}
	return "GROUP BY " + strings.Join(st.GroupBy, ", ")
}

func (g *MySQLGrammar) compileOrder(st *Statement) string {
	if len(st.OrderBy) == 0 {
		return ""
	}
	parts := make([]string, len(st.OrderBy))
	for i, o := range st.OrderBy {
		parts[i] = o.Column + " " + string(o.Direction)
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

// compileLimit; OFFSET yalnızca LIMIT ile birlikte yazılır.
func (g *MySQLGrammar) compileLimit(st *Statement) string {
	if st.Limit <= 0 {
		return ""
	}
	q := "LIMIT " + strconv.Itoa(st.Limit)
	if st.Offset > 0 {
		q += " OFFSET " + strconv.Itoa(st.Offset)
	}
	return q
}

func checkIdentifiers(st *Statement) error {
	for _, t := range []string{st.Table, st.Target} {
		if t == "" {
			continue
		}
		if _, _, err := validation.ValidateTableRef(t); err != nil {
			return err
		}
	}
	for _, j := range st.Joins {
		if _, _, err := validation.ValidateTableRef(j.Table); err != nil {
			return err
		}
	}
	for _, tc := range st.Select {
		if err := validation.ValidateIdentifier(tc.Table); err != nil {
			return err
		}
		for _, c := range tc.Columns {
			if err := validation.ValidateColumn(c.Name); err != nil {
				return err
			}
			if c.Alias != "" && c.Alias != c.Name {
				if err := validation.ValidateIdentifier(c.Alias); err != nil {
					return err
				}
			}
		}
	}
	for col := range st.Values {
		if err := validation.ValidateIdentifier(col); err != nil {
			return err
		}
	}
	for _, col := range st.GroupBy {
		if err := validation.ValidateIdentifier(col); err != nil {
			return err
		}
	}
	for _, o := range st.OrderBy {
		if err := validation.ValidateIdentifier(o.Column); err != nil {
			return err
		}
	}

	trees := append([]Condition{st.Where}, st.And...)
	trees = append(trees, st.Or...)
	for _, j := range st.Joins {
		trees = append(trees, j.On)
	}
	for _, c := range trees {
		if err := checkCondition(c); err != nil {
			return err
		}
	}
	return nil
}

func checkCondition(c Condition) error {
	switch n := c.(type) {
	case Leaf:
		return validation.ValidateIdentifier(n.Column)
	case ColumnLeaf:
		if err := validation.ValidateIdentifier(n.Left); err != nil {
			return err
		}
		return validation.ValidateIdentifier(n.Right)
	case Group:
		for _, child := range n.Children {
			if err := checkCondition(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinNonEmpty(parts []string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

var _ Grammar = (*MySQLGrammar)(nil)

// String, hata mesajlarında gramerin adını gösterir.
func (g *MySQLGrammar) String() string {
	return fmt.Sprintf("%s(strict=%t)", g.name, g.strict)
}
