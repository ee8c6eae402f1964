package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies the embedded goose migrations matching the driver of db.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var (
		dialect goose.Dialect
		dir     string
	)
	switch db.DriverName() {
	case "sqlite3":
		dialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	case "mysql":
		dialect, dir = goose.DialectMySQL, "migrations/mysql"
	default:
		return fmt.Errorf("no migrations for driver %q", db.DriverName())
	}

	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return fmt.Errorf("fs.Sub(%s) > %w", dir, err)
	}

	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return fmt.Errorf("goose.NewProvider > %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("provider.Up > %w", err)
	}
	for _, result := range results {
		slog.Default().Debug("applied migration",
			"driver", db.DriverName(),
			"version", result.Source.Version,
			"duration", result.Duration,
		)
	}
	return nil
}
