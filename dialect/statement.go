package dialect

// Column, bir projeksiyon elemanıdır. Alias, Name'den farklıysa "AS alias" üretilir.
type Column struct {
	Alias string
	Name  string
}

// TableColumns, bir tablodan seçilecek kolonlardır. Kolon listesi boşsa
// "table.*" üretilir.
type TableColumns struct {
	Table   string
	Columns []Column
}

// Columns, alias'sız kolonlarla bir TableColumns oluşturur.
//
//	dialect.Columns("users", "id", "email")  // users.id, users.email
//	dialect.Columns("orders")                // orders.*
func Columns(table string, names ...string) TableColumns {
	tc := TableColumns{Table: table}
	for _, n := range names {
		tc.Columns = append(tc.Columns, Column{Alias: n, Name: n})
	}
	return tc
}

// As, alias'lı bir kolon ekler.
func (tc TableColumns) As(alias, column string) TableColumns {
	cols := make([]Column, len(tc.Columns), len(tc.Columns)+1)
	copy(cols, tc.Columns)
	tc.Columns = append(cols, Column{Alias: alias, Name: column})
	return tc
}

// Statement, tek bir SQL ifadesinin birikmiş durumudur. Builder tarafından
// doldurulur, Grammar tarafından okunur.
type Statement struct {
	Kind     Kind
	Distinct bool
	Select   []TableColumns

	// Table, SELECT/DELETE için FROM tablosudur.
	Table string

	// Target ve Values, INSERT/UPDATE hedefini ve kolon değerlerini taşır.
	Target string
	Values map[string]any

	Joins []JoinClause
	Where Condition
	And   []Condition
	Or    []Condition

	GroupBy []string
	OrderBy []OrderClause
	Limit   int
	Offset  int

	Shape Shape
	Raw   string

	Params *Params

	// Archived, SELECT'lerde arşiv filtresinin eklenip eklenmeyeceğidir.
	Archived bool
}

// NewStatement, boş bir SELECT statement'ı oluşturur.
func NewStatement() *Statement {
	return &Statement{Params: NewParams()}
}

// Clone, statement'ın bağımsız bir kopyasını döndürür. Koşul ağaçları
// değiştirilemez değerler olduğundan paylaşılır.
func (s *Statement) Clone() *Statement {
	c := *s
	c.Select = append([]TableColumns(nil), s.Select...)
	c.Joins = append([]JoinClause(nil), s.Joins...)
	c.And = append([]Condition(nil), s.And...)
	c.Or = append([]Condition(nil), s.Or...)
	c.GroupBy = append([]string(nil), s.GroupBy...)
	c.OrderBy = append([]OrderClause(nil), s.OrderBy...)
	if s.Values != nil {
		c.Values = make(map[string]any, len(s.Values))
		for k, v := range s.Values {
			c.Values[k] = v
		}
	}
	c.Params = s.Params.Clone()
	return &c
}

// refs, FROM tablosu ve JOIN edilen tabloların referanslarını sırasıyla döndürür.
func (s *Statement) refs() []string {
	refs := make([]string, 0, len(s.Joins)+1)
	if s.Table != "" {
		refs = append(refs, s.Table)
	}
	for _, j := range s.Joins {
		refs = append(refs, j.Table)
	}
	return refs
}
