package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"sync"

	"github.com/pressly/goose/v3"
)

// goose keeps its dialect and base filesystem in package globals
var gooseMu sync.Mutex

// MigrationCommand is a goose command supported by Migrate
type MigrationCommand string

const (
	MigrateUp      MigrationCommand = "up"
	MigrateDown    MigrationCommand = "down"
	MigrateStatus  MigrationCommand = "status"
	MigrateVersion MigrationCommand = "version"
)

// Migrate runs a goose command against db using migrations embedded in fsys under dir.
// For MigrateVersion the current version is returned, otherwise 0.
func Migrate(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, dir string, command MigrationCommand, quiet bool) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if quiet {
		goose.SetLogger(goose.NopLogger())
		defer goose.SetLogger(log.Default())
	}

	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("failed to set dialect: %w", err)
	}

	switch command {
	case MigrateUp:
		if err := goose.UpContext(ctx, db, dir); err != nil {
			return 0, fmt.Errorf("failed to run migrations: %w", err)
		}
	case MigrateDown:
		if err := goose.DownContext(ctx, db, dir); err != nil {
			return 0, fmt.Errorf("failed to rollback migration: %w", err)
		}
	case MigrateStatus:
		if err := goose.StatusContext(ctx, db, dir); err != nil {
			return 0, fmt.Errorf("failed to get migration status: %w", err)
		}
	case MigrateVersion:
		version, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return 0, fmt.Errorf("failed to get version: %w", err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unknown migration command: %s", command)
	}
	return 0, nil
}
