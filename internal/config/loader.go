package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/biyonik/novasql"
)

// configNames, açık bir yol verilmediğinde çalışma dizininde aranır.
var configNames = []string{"novasql.yaml", "novasql.yml"}

// flagKeys, bayrak adlarını yapılandırma anahtarlarına eşler.
var flagKeys = map[string]string{
	"host":       "db.host",
	"port":       "db.port",
	"database":   "db.database",
	"username":   "db.username",
	"password":   "db.password",
	"context":    "db.context",
	"debug":      "db.debug",
	"strict":     "db.strict",
	"log-level":  "log_level",
	"log-format": "log_format",
	"output":     "output",
}

// findConfigFile finds the config file to use.
// Priority: explicit path > novasql.yaml > novasql.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func defaults() map[string]any {
	d := novasql.DefaultConfig()
	return map[string]any{
		"db.host":             d.Host,
		"db.port":             d.Port,
		"db.charset":          d.Charset,
		"db.collation":        d.Collation,
		"db.timeout":          d.Timeout,
		"db.conn_max_life":    d.ConnMaxLife,
		"db.context":          d.Context,
		"db.deadlock_retries": d.DeadlockRetries,
		"db.begin_retries":    d.BeginRetries,
		"log_level":           DefaultLogLevel,
		"log_format":          DefaultLogFormat,
		"output":              DefaultOutput,
	}
}

// Load, yapılandırmayı katmanlı olarak yükler.
// Precedence (highest to lowest): flags > env vars > config file > defaults
//
// Ortam değişkenleri: DB_HOST, DB_PORT, DB_DATABASE, DB_USERNAME,
// DB_PASSWORD ve diğer DB_* alanları; NOVA_LOG_LEVEL gibi NOVA_* anahtarları;
// DEBUG ise db.debug'a eşlenir. Bayraklardan yalnızca açıkça verilenler
// uygulanır.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment
	if err := k.Load(env.Provider("DB_", ".", func(s string) string {
		return "db." + strings.ToLower(strings.TrimPrefix(s, "DB_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}
	if err := k.Load(env.Provider("NOVA_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "NOVA_"))
		if rest, ok := strings.CutPrefix(key, "db_"); ok {
			return "db." + rest
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}
	if err := k.Load(env.Provider("DEBUG", ".", func(s string) string {
		if s != "DEBUG" {
			return ""
		}
		return "db.debug"
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
