package novasql

import (
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config, tek bağlantılı bir session'ın bağlantı ve davranış ayarlarıdır.
//
// Alanlar koanf etiketleriyle işaretlidir; internal/config bu yapıyı
// varsayılanlar, YAML dosyası, ortam değişkenleri ve CLI bayraklarından
// katmanlı olarak doldurur.
type Config struct {
	Host      string `koanf:"host"`
	Port      int    `koanf:"port"`
	Database  string `koanf:"database"`
	Username  string `koanf:"username"`
	Password  string `koanf:"password"`
	Charset   string `koanf:"charset"`
	Collation string `koanf:"collation"`
	TLS       bool   `koanf:"tls"`

	Timeout      time.Duration `koanf:"timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	ConnMaxLife  time.Duration `koanf:"conn_max_life"`

	// Context, "serving" ya da "operator" olabilir.
	Context         string `koanf:"context"`
	DeadlockRetries uint64 `koanf:"deadlock_retries"`
	BeginRetries    uint64 `koanf:"begin_retries"`
	Debug           bool   `koanf:"debug"`
	Strict          bool   `koanf:"strict"`
}

// DefaultConfig, yerel bir MySQL sunucusu için varsayılan ayarları döndürür.
func DefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            3306,
		Charset:         "utf8mb4",
		Collation:       "utf8mb4_unicode_ci",
		Timeout:         10 * time.Second,
		ConnMaxLife:     time.Hour,
		Context:         string(ContextServing),
		DeadlockRetries: DefaultDeadlockRetries,
		BeginRetries:    DefaultBeginRetries,
	}
}

// MySQL, sürücü yapılandırmasını üretir. Etkilenen satır sayısı değişen
// değil eşleşen satırları verecek şekilde ClientFoundRows açılır. Karakter
// seti el sıkışmada collation üzerinden seçilir; Collation boşsa
// Charset'in general_ci collation'ı kullanılır.
func (c *Config) MySQL() *mysql.Config {
	mc := mysql.NewConfig()
	mc.User = c.Username
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = c.Host
	if c.Port > 0 {
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	}
	mc.DBName = c.Database
	mc.ClientFoundRows = true
	mc.ParseTime = true
	switch {
	case c.Collation != "":
		mc.Collation = c.Collation
	case c.Charset != "":
		mc.Collation = c.Charset + "_general_ci"
	}
	if c.TLS {
		mc.TLSConfig = "true"
	}
	mc.Timeout = c.Timeout
	mc.ReadTimeout = c.ReadTimeout
	mc.WriteTimeout = c.WriteTimeout
	return mc
}

// DSN, sürücünün anlayacağı bağlantı dizesini oluşturur.
func (c *Config) DSN() string {
	return c.MySQL().FormatDSN()
}

// Options, yapılandırmadaki davranış ayarlarını Option listesine çevirir.
func (c *Config) Options() ([]Option, error) {
	appCtx, err := ParseAppContext(c.Context)
	if err != nil {
		return nil, err
	}
	return []Option{
		WithAppContext(appCtx),
		WithDeadlockRetries(c.DeadlockRetries),
		WithBeginRetries(c.BeginRetries),
		WithDebug(c.Debug),
		WithStrictIdentifiers(c.Strict),
	}, nil
}
