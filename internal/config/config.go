// Package config, novasql CLI'ının yapılandırmasını yükler ve doğrular.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/biyonik/novasql"
)

// Varsayılanlar.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultOutput    = "table"
)

// Config, CLI'ın tam yapılandırmasıdır.
type Config struct {
	DB        novasql.Config `koanf:"db"`
	LogLevel  string         `koanf:"log_level"`
	LogFormat string         `koanf:"log_format"`
	Output    string         `koanf:"output"`

	// File, yüklenen yapılandırma dosyasıdır; dosya yoksa boştur.
	File string `koanf:"-"`
}

// Validate, değerlerin geçerli olup olmadığını kontrol eder.
func (c *Config) Validate() error {
	if _, err := novasql.ParseAppContext(c.DB.Context); err != nil {
		return err
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q (want text or json)", c.LogFormat)
	}
	switch c.Output {
	case "table", "json":
	default:
		return fmt.Errorf("config: unknown output %q (want table or json)", c.Output)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("config: unknown log level %q", s)
	}
	return level, nil
}

// NewLogger, LogLevel ve LogFormat'a göre w'ye yazan bir logger oluşturur.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if c.DB.Debug && level > slog.LevelDebug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loggerKey is used to store logger in context.
type loggerKey struct{}

// WithLogger, logger'ı context'e ekler.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
