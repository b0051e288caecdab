package novasql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name                       string
		page, perPage              int
		total                      int64
		wantPage, wantPer, wantTot int
		wantOffset                 int
		wantNext, wantPrev         bool
	}{
		{"first page", 1, 10, 25, 1, 10, 3, 0, true, false},
		{"last page", 3, 10, 25, 3, 10, 3, 20, false, true},
		{"defaults", 0, 0, 0, 1, 15, 0, 0, false, false},
		{"exact fit", 2, 5, 10, 2, 5, 2, 5, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.perPage, tt.total)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPer, p.PerPage)
			assert.Equal(t, tt.wantTot, p.TotalPages)
			assert.Equal(t, tt.wantOffset, p.Offset())
			assert.Equal(t, tt.wantNext, p.HasNext())
			assert.Equal(t, tt.wantPrev, p.HasPrev())
		})
	}
}

func TestQueryResult_Nil(t *testing.T) {
	var r *QueryResult
	_, err := r.RowsAffected()
	assert.ErrorIs(t, err, ErrNoRows)
	_, err = r.LastInsertID()
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestRow(t *testing.T) {
	row := NewRow([]string{"id", "name", "deleted_at"}, []any{int64(3), "ann", nil})

	assert.Equal(t, 3, row.Len())
	assert.Equal(t, "ann", row.String("name"))
	assert.Equal(t, "", row.String("deleted_at"))
	assert.Equal(t, "", row.String("missing"))

	id, err := row.Int64("id")
	require.NoError(t, err)
	assert.EqualValues(t, 3, id)

	_, err = row.Int64("missing")
	assert.Error(t, err)

	assert.Equal(t, map[string]any{"id": int64(3), "name": "ann", "deleted_at": nil}, row.Map())
}

func TestConversions(t *testing.T) {
	ts := time.Date(2024, 6, 14, 17, 14, 6, 0, time.UTC)
	assert.Equal(t, "2024-06-14 17:14:06", asString(ts))
	assert.Equal(t, "42", asString(int64(42)))
	assert.Equal(t, "x", asString([]byte("x")))

	n, err := asInt64("17")
	require.NoError(t, err)
	assert.EqualValues(t, 17, n)
	_, err = asInt64(struct{}{})
	assert.Error(t, err)

	assert.True(t, asBool(int64(1)))
	assert.True(t, asBool("1"))
	assert.False(t, asBool([]byte("0")))
	assert.False(t, asBool(nil))
}

func TestDefaultScanner_FieldNames(t *testing.T) {
	type base struct {
		ID int64 `db:"id"`
	}
	type user struct {
		base
		Email    string `db:"email,omitempty"`
		Nickname string
		internal string
		Skip     string `db:"-"`
	}

	names, err := NewDefaultScanner().FieldNames(&[]user{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "email", "nickname"}, names)

	_, err = NewDefaultScanner().FieldNames(42)
	assert.ErrorIs(t, err, ErrInvalidDestination)
}
