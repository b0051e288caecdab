package novasql

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// Row, bir sonuç satırıdır. Kolonlar sorgudaki sırayı korur.
// Sürücüden []byte olarak gelen değerler string'e çevrilir.
type Row struct {
	cols []string
	vals []any
}

// NewRow, kolon ve değer listelerinden bir Row oluşturur.
func NewRow(cols []string, vals []any) Row {
	return Row{cols: cols, vals: vals}
}

// Columns, kolon adlarını sırasıyla döndürür.
func (r Row) Columns() []string {
	return r.cols
}

// Values, değerleri kolon sırasıyla döndürür.
func (r Row) Values() []any {
	return r.vals
}

// Len, kolon sayısıdır. Eşleşme olmadığında One boş bir Row döndürür.
func (r Row) Len() int {
	return len(r.cols)
}

// Get, kolonun değerini döndürür.
func (r Row) Get(col string) (any, bool) {
	for i, c := range r.cols {
		if c == col {
			return r.vals[i], true
		}
	}
	return nil, false
}

// String, kolonun değerini metin olarak döndürür; NULL ya da olmayan kolon "" verir.
func (r Row) String(col string) string {
	v, _ := r.Get(col)
	return asString(v)
}

// Int64, kolonun değerini tamsayıya çevirir.
func (r Row) Int64(col string) (int64, error) {
	v, ok := r.Get(col)
	if !ok {
		return 0, fmt.Errorf("novasql: column %q not in row", col)
	}
	return asInt64(v)
}

// Map, satırı sırasız bir haritaya çevirir.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.cols))
	for i, c := range r.cols {
		m[c] = r.vals[i]
	}
	return m
}

// scanRows, en fazla limit satırı (0 = sınırsız) Row listesine okur.
func scanRows(rows *sql.Rows, limit int) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out = append(out, Row{cols: cols, vals: vals})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// scanFirst, ilk satırın ilk kolonunu okur. Satır yoksa ok=false döner.
func scanFirst(rows *sql.Rows) (v any, ok bool, err error) {
	if !rows.Next() {
		return nil, false, nil
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, false, err
	}
	dest := make([]any, len(cols))
	for i := range dest {
		var ignore any
		dest[i] = &ignore
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, false, err
	}
	return *(dest[0].(*any)), true, nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.DateTime)
	default:
		return fmt.Sprint(t)
	}
}

func asInt64(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case float64:
		return int64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return strconv.ParseInt(string(t), 10, 64)
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("novasql: cannot convert %T to int64", v)
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case []byte:
		s := string(t)
		return s != "" && s != "0"
	case string:
		return t != "" && t != "0"
	default:
		n, err := asInt64(v)
		return err == nil && n != 0
	}
}
