package dialect

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Params, bağlama adından skaler değere giden, ekleme sırasını koruyan bir haritadır.
//
// Liste ve harita değerleri iç içe saklanmaz; "base_0", "base_1" ya da
// "base_key" biçiminde düzleştirilir. IN koşulları bu adlandırmaya dayanır.
type Params struct {
	names  []string
	values map[string]any
}

// NewParams, boş bir parametre haritası oluşturur.
func NewParams() *Params {
	return &Params{values: make(map[string]any)}
}

// Add, değeri name altında kaydeder. Slice/array değerler indeksle, haritalar
// fmt.Sprint ile yazılmış anahtarların sırasıyla özyinelemeli olarak düzleştirilir.
// []byte skaler kabul edilir.
func (p *Params) Add(name string, value any) {
	rv := reflect.ValueOf(value)
	switch {
	case value == nil:
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
	case rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			p.Add(name+"_"+strconv.Itoa(i), rv.Index(i).Interface())
		}
		return
	case rv.Kind() == reflect.Map:
		keys := rv.MapKeys()
		names := make(map[string]reflect.Value, len(keys))
		order := make([]string, 0, len(keys))
		for _, k := range keys {
			key := fmt.Sprint(k.Interface())
			names[key] = k
			order = append(order, key)
		}
		sort.Strings(order)
		for _, key := range order {
			p.Add(name+"_"+key, rv.MapIndex(names[key]).Interface())
		}
		return
	}
	p.Set(name, value)
}

// AddAll, haritadaki her girdiyi sıralı anahtarlarla Add eder.
func (p *Params) AddAll(values map[string]any) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Add(k, values[k])
	}
}

// Set, değeri düzleştirmeden kaydeder. Var olan bir ad ilk konumunu korur.
func (p *Params) Set(name string, value any) {
	name = BindName(name)
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = value
}

// Lookup, bağlama adının değerini döndürür.
func (p *Params) Lookup(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[BindName(name)]
	return v, ok
}

// WithPrefix, prefix ile başlayan adları kayıt sırasıyla döndürür.
func (p *Params) WithPrefix(prefix string) []string {
	if p == nil {
		return nil
	}
	prefix = BindName(prefix)
	var out []string
	for _, n := range p.names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}

// Names, kayıtlı adları kayıt sırasıyla döndürür.
func (p *Params) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Len, kayıtlı parametre sayısıdır.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Merge, other'daki parametreleri sırasıyla ekler.
func (p *Params) Merge(other *Params) {
	if other == nil {
		return
	}
	for _, n := range other.names {
		p.Set(n, other.values[n])
	}
}

// Clone, bağımsız bir kopya döndürür.
func (p *Params) Clone() *Params {
	c := NewParams()
	c.Merge(p)
	return c
}

// Map, parametreleri düz bir harita olarak döndürür.
func (p *Params) Map() map[string]any {
	out := make(map[string]any, p.Len())
	if p == nil {
		return out
	}
	for _, n := range p.names {
		out[n] = p.values[n]
	}
	return out
}

// NullValue, değerin SQL NULL'a karşılık gelip gelmediğini bildirir: nil, nil
// pointer ya da nil üreten bir driver.Valuer (örn. geçersiz sql.NullString).
func NullValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return true
	}
	if valuer, ok := v.(driver.Valuer); ok {
		dv, err := valuer.Value()
		return err == nil && dv == nil
	}
	return false
}
