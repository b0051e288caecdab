package novasql

import (
	"errors"
	"fmt"

	"github.com/biyonik/novasql/dialect"
	"github.com/biyonik/novasql/internal/bind"
)

// Plan, derlenmiş ve değişmez bir statement'tır. Bir terminal tarafından
// üretilir ve executor tarafından bir kez tüketilir.
type Plan struct {
	// Op, log ve hata mesajlarında görünen terminal adıdır (örn. "count").
	Op   string
	Kind dialect.Kind

	// Named, ":name" yer tutuculu SQL metnidir.
	Named string
	// SQL, sürücüye giden "?" yer tutuculu metindir.
	SQL  string
	Args []any

	Params map[string]any
}

// compilePlan, statement'ı gramerle derler ve isimli yer tutucuları
// konumsal argümanlara çevirir.
func compilePlan(g dialect.Grammar, st *dialect.Statement, op string) (*Plan, error) {
	named, params, err := g.Compile(st)
	if err != nil {
		return nil, err
	}

	positional, args, err := bind.Compile(named, params.Lookup)
	if err != nil {
		var missing *bind.MissingError
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%w: %s in %q", ErrMissingParameter, missing.Name, named)
		}
		return nil, err
	}

	return &Plan{
		Op:     op,
		Kind:   st.Kind,
		Named:  named,
		SQL:    positional,
		Args:   args,
		Params: params.Map(),
	}, nil
}
