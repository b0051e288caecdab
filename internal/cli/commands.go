package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/biyonik/novasql"
	"github.com/biyonik/novasql/internal/config"
	"github.com/biyonik/novasql/schema"
)

func (a *app) newPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.session(cmd, func(ctx context.Context, cfg *config.Config, s *novasql.Session) error {
				if err := s.Ping(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok %s:%d/%s\n", cfg.DB.Host, cfg.DB.Port, cfg.DB.Database)
				return nil
			})
		},
	}
}

func (a *app) newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <table>",
		Short: "Show the columns, indexes and foreign keys of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.unit(cmd, func(ctx context.Context, cfg *config.Config, s *novasql.Session) error {
				return inspect(ctx, cmd, schema.New(s, cfg.DB.Database), args[0])
			})
		},
	}
}

func inspect(ctx context.Context, cmd *cobra.Command, sc *schema.Schema, tbl string) error {
	exists, err := sc.TableExists(ctx, tbl)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("table %s.%s not found", sc.Database(), tbl)
	}

	cols, err := sc.Columns(ctx, tbl)
	if err != nil {
		return err
	}
	indexes, err := sc.FindIndexes(ctx, tbl)
	if err != nil {
		return err
	}
	fks, err := sc.FindForeignKeys(ctx, tbl, "")
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	rows := make([]table.Row, len(cols))
	for i, c := range cols {
		def := "NULL"
		if c.Default != nil {
			def = *c.Default
		}
		rows[i] = table.Row{c.Name, c.Type, c.Nullable, c.Key, def}
	}
	renderTable(w, table.Row{"column", "type", "null", "key", "default"}, rows)

	if len(indexes) > 0 {
		names := make([]string, 0, len(indexes))
		for name := range indexes {
			names = append(names, name)
		}
		sort.Strings(names)
		rows = make([]table.Row, 0, len(names))
		for _, name := range names {
			rows = append(rows, table.Row{name, strings.Join(indexes[name], ", ")})
		}
		renderTable(w, table.Row{"index", "columns"}, rows)
	}

	if len(fks) > 0 {
		names := make([]string, 0, len(fks))
		for name := range fks {
			names = append(names, name)
		}
		sort.Strings(names)
		rows = make([]table.Row, 0, len(names))
		for _, name := range names {
			fk := fks[name]
			rows = append(rows, table.Row{name, fk.Column, fk.RefTable + "." + fk.RefColumn})
		}
		renderTable(w, table.Row{"foreign key", "column", "references"}, rows)
	}
	return nil
}

func (a *app) newQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a read statement and print its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.unit(cmd, func(ctx context.Context, cfg *config.Config, s *novasql.Session) error {
				rows, err := s.New().SetRawSQL(args[0]).AllContext(ctx)
				if err != nil {
					return err
				}
				return renderRows(cmd.OutOrStdout(), rows, cfg.Output)
			})
		},
	}
}

func (a *app) newExecCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run a write or DDL statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.unit(cmd, func(ctx context.Context, _ *config.Config, s *novasql.Session) error {
				n, err := s.New().SetRawSQL(args[0]).ExecuteContext(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d rows affected\n", n)
				return nil
			})
		},
	}
}
