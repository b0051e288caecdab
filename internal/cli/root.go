// Package cli provides the command-line interface for novasql.
//
// Komutlar operatör bağlamında çalışır; arşivlenmiş satırlar filtrelenmez.
// ping dışındaki her komut tek bir transaction içinde yürütülür.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/biyonik/novasql"
	"github.com/biyonik/novasql/internal/config"
	"github.com/biyonik/novasql/migrate"
)

// Opener, yapılandırmadan bir session açar.
type Opener func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*novasql.Session, error)

// openMySQL, varsayılan Opener'dır.
func openMySQL(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*novasql.Session, error) {
	return novasql.Open(ctx, &cfg.DB, novasql.WithLogger(logger), novasql.WithAppContext(novasql.ContextOperator))
}

// configKey is used to store config in context.
type configKey struct{}

type app struct {
	cfgFile    string
	open       Opener
	migrations []migrate.Migration
	now        func() time.Time
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(openMySQL, migrate.Defaults())
}

func newRootCmd(open Opener, migrations []migrate.Migration) *cobra.Command {
	a := &app{open: open, migrations: migrations, now: time.Now}

	rootCmd := &cobra.Command{
		Use:     "novasql",
		Short:   "novasql - MySQL operator console",
		Version: novasql.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(a.cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger := cfg.NewLogger(cmd.ErrOrStderr())
			if cfg.File != "" {
				logger.Debug("config loaded", "file", cfg.File)
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			cmd.SetContext(config.WithLogger(ctx, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./novasql.yaml)")
	flags.String("host", "", "MySQL host")
	flags.Int("port", 0, "MySQL port")
	flags.StringP("database", "d", "", "database name")
	flags.StringP("username", "u", "", "user name")
	flags.String("password", "", "password")
	flags.Bool("debug", false, "log every statement")
	flags.Bool("strict", false, "validate identifiers while compiling statements")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.String("log-format", "", "log format (text|json)")
	flags.StringP("output", "o", "", "output format (table|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(a.newPingCommand())
	rootCmd.AddCommand(a.newInspectCommand())
	rootCmd.AddCommand(a.newQueryCommand())
	rootCmd.AddCommand(a.newExecCommand())
	rootCmd.AddCommand(a.newMigrateCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		DB:        *novasql.DefaultConfig(),
		LogLevel:  config.DefaultLogLevel,
		LogFormat: config.DefaultLogFormat,
		Output:    config.DefaultOutput,
	}
}

// session, komutun session'ını açar ve fn bitince kapatır.
func (a *app) session(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, s *novasql.Session) error) error {
	ctx := cmd.Context()
	cfg := GetConfig(ctx)

	s, err := a.open(ctx, cfg, config.GetLogger(ctx))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	return fn(ctx, cfg, s)
}

// unit, fn'i tek bir transaction içinde çalıştırır.
func (a *app) unit(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, s *novasql.Session) error) error {
	return a.session(cmd, func(ctx context.Context, cfg *config.Config, s *novasql.Session) error {
		return s.Transaction(ctx, func(s *novasql.Session) error {
			return fn(ctx, cfg, s)
		})
	})
}
