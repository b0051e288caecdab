package dialect

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams_AddScalarNormalizesMarker(t *testing.T) {
	p := NewParams()
	p.Add("id", 5)
	p.Add(":name", "alice")

	assert.Equal(t, []string{":id", ":name"}, p.Names())
	v, ok := p.Lookup("id")
	assert.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestParams_AddFlattensLists(t *testing.T) {
	p := NewParams()
	p.Add("status", []string{"active", "pending"})

	assert.Equal(t, []string{":status_0", ":status_1"}, p.Names())
	assert.Equal(t, map[string]any{":status_0": "active", ":status_1": "pending"}, p.Map())
}

func TestParams_AddFlattensMapsRecursively(t *testing.T) {
	p := NewParams()
	p.Add("filter", map[string]any{
		"b":    2,
		"a":    1,
		"tags": []int{7, 8},
	})

	assert.Equal(t, []string{":filter_a", ":filter_b", ":filter_tags_0", ":filter_tags_1"}, p.Names())
}

func TestParams_AddFlattensNonStringKeys(t *testing.T) {
	p := NewParams()
	p.Add("ids", map[int]string{2: "b", 1: "a"})

	assert.Equal(t, []string{":ids_1", ":ids_2"}, p.Names())
	assert.Equal(t, map[string]any{":ids_1": "a", ":ids_2": "b"}, p.Map())
}

func TestParams_BytesAreScalar(t *testing.T) {
	p := NewParams()
	p.Add("blob", []byte("xyz"))

	assert.Equal(t, []string{":blob"}, p.Names())
}

func TestParams_SetKeepsFirstPosition(t *testing.T) {
	p := NewParams()
	p.Set("a", 1)
	p.Set("b", 2)
	p.Set(":a", 3)

	assert.Equal(t, []string{":a", ":b"}, p.Names())
	v, _ := p.Lookup(":a")
	assert.Equal(t, 3, v)
}

func TestParams_AddAllSortsKeys(t *testing.T) {
	p := NewParams()
	p.AddAll(map[string]any{"z": 1, "m": 2, "a": 3})

	assert.Equal(t, []string{":a", ":m", ":z"}, p.Names())
}

func TestParams_WithPrefix(t *testing.T) {
	p := NewParams()
	p.Add("status", []string{"x", "y"})
	p.Add("status_code", 200)
	p.Add("other", 1)

	assert.Equal(t, []string{":status_0", ":status_1", ":status_code"}, p.WithPrefix("status_"))
	assert.Equal(t, []string{":status_0", ":status_1", ":status_code"}, p.WithPrefix(":status_"))
}

func TestParams_CloneIsIndependent(t *testing.T) {
	p := NewParams()
	p.Add("a", 1)
	c := p.Clone()
	c.Add("b", 2)

	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 2, c.Len())
}

func TestParams_NilSafe(t *testing.T) {
	var p *Params
	assert.Equal(t, 0, p.Len())
	assert.Nil(t, p.Names())
	assert.Empty(t, p.Map())
	_, ok := p.Lookup("x")
	assert.False(t, ok)
	assert.Equal(t, 0, p.Clone().Len())
}

func TestNullValue(t *testing.T) {
	var nilPtr *string
	s := "x"

	assert.True(t, NullValue(nil))
	assert.True(t, NullValue(nilPtr))
	assert.True(t, NullValue(sql.NullString{}))
	assert.False(t, NullValue(sql.NullString{String: "a", Valid: true}))
	assert.False(t, NullValue(&s))
	assert.False(t, NullValue(0))
	assert.False(t, NullValue(""))
}
