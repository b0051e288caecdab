package novasql

import (
	"database/sql"
	"log/slog"

	"github.com/biyonik/novasql/dialect"
)

// -----------------------------------------------------------------------------
//  Session yapılandırması Option fonksiyonlarıyla yapılır. Her With* çağrısı
//  NewSession/Open sırasında sırayla uygulanır; verilmeyen ayarlar
//  varsayılanlarında kalır.
// -----------------------------------------------------------------------------

// Option, bir Session üzerinde çalışan yapılandırma fonksiyonudur.
type Option func(*Session)

// Varsayılan tekrar sayıları: ilk denemeye ek olarak 3 deneme daha.
const (
	DefaultDeadlockRetries = 3
	DefaultBeginRetries    = 3
)

// WithGrammar, derlemede kullanılacak gramerini değiştirir. Varsayılan
// dialect.MySQL()'dir.
//
//	s, err := novasql.NewSession(ctx, db, novasql.WithGrammar(dialect.MySQL().Strict(true)))
func WithGrammar(g dialect.Grammar) Option {
	return func(s *Session) {
		if g != nil {
			s.grammar = g
		}
	}
}

// WithScanner, AllInto/OneInto'nun kullandığı struct tarayıcısını değiştirir.
func WithScanner(sc Scanner) Option {
	return func(s *Session) {
		if sc != nil {
			s.scanner = sc
		}
	}
}

// WithLogger, session'ın slog logger'ını ayarlar. Varsayılan logger hiçbir
// şey yazmaz.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDebug açıkken çalışan her statement süresiyle birlikte Debug
// seviyesinde loglanır.
//
//	s, err := novasql.Open(ctx, cfg,
//	    novasql.WithDebug(true),
//	    novasql.WithLogger(logger),
//	)
func WithDebug(enabled bool) Option {
	return func(s *Session) {
		s.debug = enabled
	}
}

// WithAppContext, session'ın çalışma bağlamını ayarlar.
func WithAppContext(c AppContext) Option {
	return func(s *Session) {
		s.appCtx = c
	}
}

// WithDeadlockRetries, Execute'un deadlock hatasında ilk denemeye ek olarak
// kaç kez daha deneyeceğini belirler.
func WithDeadlockRetries(n uint64) Option {
	return func(s *Session) {
		s.deadlockRetries = n
	}
}

// WithBeginRetries, Begin'in başarısız olduğunda kaç kez daha deneyeceğini
// belirler.
func WithBeginRetries(n uint64) Option {
	return func(s *Session) {
		s.beginRetries = n
	}
}

// WithStrictIdentifiers açıkken tablo, kolon ve alias adları derleme
// sırasında allow-list kontrolünden geçer. Yalnızca MySQL gramerinde etkilidir.
func WithStrictIdentifiers(enabled bool) Option {
	return func(s *Session) {
		s.strict = enabled
	}
}

// WithTxOptions, Begin'in kullanacağı izolasyon seviyesi gibi ayarları verir.
func WithTxOptions(opts *sql.TxOptions) Option {
	return func(s *Session) {
		s.txOptions = opts
	}
}

// applyOptions, verilen Option'ları sırayla uygular; nil olanlar atlanır.
func applyOptions(s *Session, opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.strict {
		if mg, ok := s.grammar.(*dialect.MySQLGrammar); ok {
			s.grammar = mg.Strict(true)
		}
	}
}
