// Command migrate manages the PostgreSQL schema of the voucher backend.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sanad/backend/internal/infrastructure/config"
	"github.com/sanad/backend/internal/infrastructure/logger"
	"github.com/sanad/backend/internal/infrastructure/migration"
	"github.com/sanad/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "internal/infrastructure/migration/sql"

type migrateApp struct {
	log *zap.Logger
	dir string
}

func newRootCmd() *cobra.Command {
	a := &migrateApp{log: zap.NewNop()}
	var logLevel string

	root := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tool for the Sanad voucher backend",
		Long: `migrate applies the schema migrations compiled into this binary to the
PostgreSQL database from config.toml, .env and SANAD_* variables.
Pass --dir to run migrations from a directory instead.

sqlite development databases are migrated by the server on startup.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			log, err := logger.ForCLI(logLevel)
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.dir, "dir", "", "read migrations from this directory instead of the embedded set")

	root.AddCommand(
		upCmd(a),
		downCmd(a),
		stepCmd(a),
		gotoCmd(a),
		versionCmd(a),
		forceCmd(a),
		createCmd(),
		listCmd(a),
	)
	return root
}

// withMigrator connects to the configured database and runs fn
func (a *migrateApp) withMigrator(fn func(*migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Database.Driver == "sqlite" {
		return errors.New("migrations target postgres; sqlite databases are auto-migrated by the server")
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}

	var m *migration.Migrator
	if a.dir != "" {
		m, err = migration.NewFromDir(sqlDB, a.dir, a.log)
	} else {
		m, err = migration.New(sqlDB, a.log)
	}
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			a.log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return fn(m)
}

func upCmd(a *migrateApp) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.withMigrator(func(m *migration.Migrator) error { return m.Up() })
		},
	}
}

func downCmd(a *migrateApp) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !confirm {
				return errors.New("down drops every voucher table; pass --confirm to proceed")
			}
			return a.withMigrator(func(m *migration.Migrator) error { return m.Down() })
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm rolling back every migration")
	return cmd
}

func stepCmd(a *migrateApp) *cobra.Command {
	return &cobra.Command{
		Use:     "step <n>",
		Short:   "Apply n migrations (negative rolls back)",
		Example: "  migrate step -- -1",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n == 0 {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return a.withMigrator(func(m *migration.Migrator) error { return m.Steps(n) })
		},
	}
}

func gotoCmd(a *migrateApp) *cobra.Command {
	return &cobra.Command{
		Use:   "goto <version>",
		Short: "Migrate up or down to a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return a.withMigrator(func(m *migration.Migrator) error { return m.GoTo(uint(v)) })
		},
	}
}

func versionCmd(a *migrateApp) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withMigrator(func(m *migration.Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if v == 0 {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%06d dirty=%t\n", v, dirty)
				return err
			})
		},
	}
}

func forceCmd(a *migrateApp) *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Set the version without running migrations",
		Long:  "force records version as applied and clears the dirty flag. Use it after repairing a failed migration by hand.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < -1 {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return a.withMigrator(func(m *migration.Migrator) error { return m.Force(v) })
		},
	}
}

func createCmd() *cobra.Command {
	var dir, description string
	cmd := &cobra.Command{
		Use:     "create <name>",
		Short:   "Create an empty up/down migration pair",
		Example: `  migrate create add_receipt_notes -m "Free-text notes on receipts"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mf, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\nCreated %s\n", mf.UpPath, mf.DownPath)
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "path", defaultMigrationsDir, "directory to create the files in")
	cmd.Flags().StringVarP(&description, "message", "m", "", "description written into the file header")
	return cmd
}

func listCmd(a *migrateApp) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				names []string
				err   error
			)
			if a.dir != "" {
				names, err = migration.ListMigrations(a.dir)
			} else {
				names, err = migration.Embedded()
			}
			if err != nil {
				return err
			}
			if len(names) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "no migrations found")
				return err
			}
			for _, n := range names {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), n); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
