package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/biyonik/novasql"
	"github.com/biyonik/novasql/internal/config"
	"github.com/biyonik/novasql/migrate"
	"github.com/biyonik/novasql/schema"
)

func (a *app) newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or list schema migrations",
	}
	cmd.AddCommand(
		a.migrateSubcommand("up", "Apply every pending migration as a new batch", migrateUp),
		a.migrateSubcommand("rollback", "Roll back the latest batch", migrateRollback),
		a.migrateSubcommand("status", "List applied and pending migrations", migrateStatus),
		a.newMigrateNewCommand(),
	)
	return cmd
}

// newMigrateNewCommand, veritabanına bağlanmadan zaman damgalı bir migration
// iskeleti yazar. Var olan bir dosyanın üzerine yazılmaz.
func (a *app) newMigrateNewCommand() *cobra.Command {
	var dir, pkg string
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a timestamped migration stub",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := migrate.NewName(strings.Join(args, " "), a.now())
			if err != nil {
				return err
			}
			src, err := migrate.Scaffold(pkg, name)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(dir, strings.ToLower(name)+".go")
			f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
			if err != nil {
				return err
			}
			if _, err := f.Write(src); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			config.GetLogger(cmd.Context()).Debug("migration stub written", "path", path)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Migration file created: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "migrations", "directory for the new migration file")
	cmd.Flags().StringVar(&pkg, "package", "migrations", "Go package name of the new file")
	return cmd
}

type migrateFunc func(ctx context.Context, cmd *cobra.Command, r *migrate.Runner) error

func (a *app) migrateSubcommand(use, short string, run migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// MySQL DDL'i örtük olarak commit eder; migrations tablosundaki
			// kayıtlar şemayla aynı kalsın diye runner hatası birimi geri
			// almaz, commit sonrasında döndürülür.
			var runErr error
			err := a.unit(cmd, func(ctx context.Context, cfg *config.Config, s *novasql.Session) error {
				r, err := migrate.NewRunner(schema.New(s, cfg.DB.Database), a.migrations...)
				if err != nil {
					return err
				}
				runErr = run(ctx, cmd, r)
				return nil
			})
			if err != nil {
				return err
			}
			return runErr
		},
	}
}

func migrateUp(ctx context.Context, cmd *cobra.Command, r *migrate.Runner) error {
	w := cmd.OutOrStdout()
	results, err := r.Up(ctx)
	for _, res := range results {
		_, _ = fmt.Fprintf(w, "Applied %s in %.2f secs\n", res.Name, res.Elapsed.Seconds())
	}
	if err != nil {
		return err
	}
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "No new migrations found.")
		return nil
	}
	_, _ = fmt.Fprintln(w, "All migrations completed successfully.")
	return nil
}

func migrateRollback(ctx context.Context, cmd *cobra.Command, r *migrate.Runner) error {
	w := cmd.OutOrStdout()
	results, err := r.Rollback(ctx)
	for _, res := range results {
		_, _ = fmt.Fprintf(w, "Rolled back %s in %.2f secs\n", res.Name, res.Elapsed.Seconds())
	}
	if err == nil && len(results) == 0 {
		_, _ = fmt.Fprintln(w, "Nothing to roll back.")
	}
	return err
}

func migrateStatus(ctx context.Context, cmd *cobra.Command, r *migrate.Runner) error {
	records, err := r.Status(ctx)
	if err != nil {
		return err
	}
	applied := make(map[string]bool, len(records))
	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		applied[rec.Name] = true
		rows = append(rows, table.Row{rec.Name, rec.Batch, formatValue(rec.AppliedAt)})
	}
	for _, m := range r.Migrations() {
		if !applied[m.Name] {
			rows = append(rows, table.Row{m.Name, "-", "pending"})
		}
	}
	renderTable(cmd.OutOrStdout(), table.Row{"migration", "batch", "applied"}, rows)
	return nil
}
