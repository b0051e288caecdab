package novasql

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/go-sql-driver/mysql"

	"github.com/biyonik/novasql/dialect"
)

// Version, novasql kütüphanesinin mevcut sürümünü belirtir.
const Version = "0.2.0"

// P, Where/AddParameters/SetRawSQL'e verilen parametre haritalarının kısa adıdır.
//
//	s.New().Select().From("items").Where(dialect.Eq("id"), novasql.P{"id": 5})
type P = map[string]any

// Open, cfg ile MySQL'e bağlanır ve tek bağlantılı bir Session döndürür.
// Havuz bir bağlantıyla sınırlandırılır; bağlantı Ping ile doğrulanır.
//
//	cfg := novasql.DefaultConfig()
//	cfg.Database = "app"
//	s, err := novasql.Open(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
func Open(ctx context.Context, cfg *Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	connector, err := mysql.NewConnector(cfg.MySQL())
	if err != nil {
		return nil, &ConnectionError{Op: "connect", Err: err}
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if cfg.ConnMaxLife > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLife)
	}

	cfgOpts, err := cfg.Options()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s, err := NewSession(ctx, db, append(cfgOpts, opts...)...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.ownsDB = true

	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// New, session'a bağlı olmayan bir Builder oluşturur. Yalnızca SQL üretmek
// için kullanılır; terminaller ErrNoSession döndürür.
//
//	q, args, err := novasql.New().Select().From("users").Where(dialect.Eq("id"), novasql.P{"id": 1}).ToSQL()
func New(opts ...Option) *Builder {
	s := &Session{
		grammar: dialect.MySQL(),
		appCtx:  ContextServing,
		logger:  slog.New(slog.DiscardHandler),
	}
	applyOptions(s, opts)
	return newBuilder(nil, s.grammar, s.appCtx)
}
