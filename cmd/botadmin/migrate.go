package main

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"tgbots/internal/analytics/ch"
	"tgbots/internal/storage"
	"tgbots/internal/storage/sqlite"
)

const (
	targetSQLite     = "sqlite"
	targetClickHouse = "clickhouse"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate <up|down|status|version>",
		Short:     "Run schema migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetString("target")
			dbPath, _ := cmd.Flags().GetString("db")
			command := storage.MigrationCommand(args[0])

			db, dialect, fsys, dir, err := openTarget(target, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.PingContext(cmd.Context()); err != nil {
				return fmt.Errorf("failed to ping %s: %w", target, err)
			}

			version, err := storage.Migrate(cmd.Context(), db, dialect, fsys, dir, command, false)
			if err != nil {
				return err
			}
			switch command {
			case storage.MigrateVersion:
				fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", version)
			case storage.MigrateUp:
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations completed successfully")
			case storage.MigrateDown:
				fmt.Fprintln(cmd.OutOrStdout(), "Rollback completed successfully")
			}
			return nil
		},
	}

	cmd.Flags().String("target", targetSQLite, "Database to migrate: sqlite or clickhouse")
	cmd.Flags().String("db", getEnv("DATABASE_PATH", "bot.db"), "SQLite database file")
	return cmd
}

func openTarget(target, dbPath string) (*sql.DB, string, fs.FS, string, error) {
	switch target {
	case targetSQLite:
		store, err := sqlite.NewSQLiteDB(dbPath)
		if err != nil {
			return nil, "", nil, "", err
		}
		return store.DB(), sqlite.Dialect, sqlite.Migrations, sqlite.MigrationsDir, nil
	case targetClickHouse:
		return ch.OpenDB(clickHouseConfig()), ch.Dialect, ch.Migrations, ch.MigrationsDir, nil
	}
	return nil, "", nil, "", fmt.Errorf("unknown target %q (expected %s or %s)", target, targetSQLite, targetClickHouse)
}
