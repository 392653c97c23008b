package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/phrazzld/realitycheck-api/internal/platform/logger"
	"github.com/phrazzld/realitycheck-api/internal/platform/migrate"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Manage the database schema with the migrations embedded in the binary.

Examples:
  # Apply all pending migrations
  realitycheck migrate up

  # Roll back the most recent migration
  realitycheck migrate down

  # Show which migrations are applied
  realitycheck migrate status`,
	}

	cmd.AddCommand(
		migrateSubcommand("up", "Apply all pending migrations", func(ctx context.Context, m *migrate.Migrator, _ io.Writer) error {
			return m.Up(ctx)
		}),
		migrateSubcommand("down", "Roll back the most recent migration", func(ctx context.Context, m *migrate.Migrator, _ io.Writer) error {
			return m.Down(ctx)
		}),
		migrateSubcommand("status", "List migrations and whether they are applied", printStatus),
		migrateSubcommand("version", "Print the current schema version", func(ctx context.Context, m *migrate.Migrator, w io.Writer) error {
			v, err := m.Version(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, v)
			return err
		}),
	)
	return cmd
}

type migrateFunc func(ctx context.Context, m *migrate.Migrator, out io.Writer) error

func migrateSubcommand(use, short string, fn migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateCommand(cmd.Context(), cmd.OutOrStdout(), fn)
		},
	}
}

// runMigrateCommand opens the configured database and runs fn against it.
func runMigrateCommand(ctx context.Context, out io.Writer, fn migrateFunc) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := setupAppDatabase(ctx, cfg.Database, l)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	m, err := newMigrator(cfg.Database.Driver, db, l)
	if err != nil {
		return err
	}
	return fn(ctx, m, out)
}

func printStatus(ctx context.Context, m *migrate.Migrator, out io.Writer) error {
	statuses, err := m.Status(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "VERSION\tSTATE\tMIGRATION")
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Version, state, s.Path)
	}
	return tw.Flush()
}
