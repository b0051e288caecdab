package novasql

import (
	"database/sql"
	"reflect"
	"strings"
	"sync"
)

// =====================================================================================
// Scanner, sonuç satırlarını `db:"column"` etiketli struct'lara aktarır.
//
//   1. Struct alanları reflection ile taranır (gömülü struct'lar dahil)
//   2. `db` etiketlerine göre kolon–alan eşlemesi çıkarılır
//   3. Eşleme tip başına önbelleğe alınır
//   4. Sonuç kolonları alanlarla eşleştirilir; karşılığı olmayan kolonlar atlanır
// =====================================================================================

// Scanner, satırları Go değerlerine aktaran sözleşmedir.
type Scanner interface {
	// ScanRows, tüm satırları *[]T ya da *[]*T hedefine ekler.
	ScanRows(rows *sql.Rows, dest any) error

	// ScanOne, ilk satırı *T hedefine yazar. Satır yoksa ErrNoRows döner.
	ScanOne(rows *sql.Rows, dest any) error
}

// DefaultScanner, etiket tabanlı varsayılan tarayıcıdır.
type DefaultScanner struct {
	cache sync.Map // reflect.Type → *structInfo
}

// NewDefaultScanner, varsayılan tarayıcıyı oluşturur.
func NewDefaultScanner() *DefaultScanner {
	return &DefaultScanner{}
}

type structInfo struct {
	fields  []fieldInfo
	columns map[string]int
}

type fieldInfo struct {
	index []int
	name  string
}

// ScanRows, rows'u dest dilimine aktarır.
func (s *DefaultScanner) ScanRows(rows *sql.Rows, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrNilDestination
	}

	sliceVal := v.Elem()
	if sliceVal.Kind() != reflect.Slice {
		return ErrInvalidDestination
	}

	elemType := sliceVal.Type().Elem()
	isPtr := elemType.Kind() == reflect.Pointer
	if isPtr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return ErrInvalidDestination
	}

	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	mapping := s.columnMapping(elemType, columns)

	for rows.Next() {
		elemVal := reflect.New(elemType).Elem()
		if err := rows.Scan(s.targets(elemVal, mapping)...); err != nil {
			return err
		}
		if isPtr {
			sliceVal.Set(reflect.Append(sliceVal, elemVal.Addr()))
		} else {
			sliceVal.Set(reflect.Append(sliceVal, elemVal))
		}
	}
	return rows.Err()
}

// ScanOne, ilk satırı dest struct'ına aktarır.
func (s *DefaultScanner) ScanOne(rows *sql.Rows, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrNilDestination
	}
	elem := v.Elem()
	if elem.Kind() != reflect.Struct {
		return ErrInvalidDestination
	}

	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return ErrNoRows
	}
	return rows.Scan(s.targets(elem, s.columnMapping(elem.Type(), columns))...)
}

// FieldNames, struct'ın eşlenen kolon adlarını alan sırasıyla döndürür.
// dest bir struct, struct pointer'ı ya da struct dilimi olabilir.
func (s *DefaultScanner) FieldNames(dest any) ([]string, error) {
	t := reflect.TypeOf(dest)
	for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, ErrInvalidDestination
	}

	info := s.structInfo(t)
	names := make([]string, len(info.fields))
	for i, f := range info.fields {
		names[i] = f.name
	}
	return names, nil
}

// columnMapping, her sonuç kolonu için alan indeksini verir; -1 atlanır.
func (s *DefaultScanner) columnMapping(t reflect.Type, columns []string) []int {
	info := s.structInfo(t)
	mapping := make([]int, len(columns))
	for i, col := range columns {
		if idx, ok := info.columns[strings.ToLower(col)]; ok {
			mapping[i] = idx
		} else {
			mapping[i] = -1
		}
	}
	return mapping
}

func (s *DefaultScanner) targets(elem reflect.Value, mapping []int) []any {
	info := s.structInfo(elem.Type())
	dests := make([]any, len(mapping))
	for i, idx := range mapping {
		if idx < 0 {
			var ignore any
			dests[i] = &ignore
			continue
		}
		dests[i] = elem.FieldByIndex(info.fields[idx].index).Addr().Interface()
	}
	return dests
}

func (s *DefaultScanner) structInfo(t reflect.Type) *structInfo {
	if cached, ok := s.cache.Load(t); ok {
		return cached.(*structInfo)
	}

	info := &structInfo{columns: make(map[string]int)}
	s.parseStruct(t, nil, info)
	s.cache.Store(t, info)
	return info
}

// parseStruct, gömülü struct'lar dahil dışa açık alanları tarar. Etiketsiz
// alanlar küçük harfli alan adıyla, `db:"-"` alanlar hiç eşlenmez.
func (s *DefaultScanner) parseStruct(t reflect.Type, index []int, info *structInfo) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldIndex := append(append([]int{}, index...), i)

		tag := field.Tag.Get("db")
		if field.Anonymous && field.Type.Kind() == reflect.Struct && tag == "" {
			s.parseStruct(field.Type, fieldIndex, info)
			continue
		}
		if !field.IsExported() {
			continue
		}
		if tag == "-" {
			continue
		}

		name := strings.ToLower(field.Name)
		if tag != "" {
			name = strings.Split(tag, ",")[0]
		}

		info.columns[strings.ToLower(name)] = len(info.fields)
		info.fields = append(info.fields, fieldInfo{index: fieldIndex, name: name})
	}
}
