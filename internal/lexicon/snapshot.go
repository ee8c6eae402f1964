package lexicon

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/at-ishikawa/stardict/internal/database"
)

// seedSnapshot copies src next to dst, checks that the copy opens as a
// lexicon and only then renames it onto dst, so dst either holds a usable
// store or does not exist.
func seedSnapshot(ctx context.Context, src, dst string) (err error) {
	tmpPath, err := copyToTemp(src, dst)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err = prepareSnapshot(ctx, tmpPath); err != nil {
		return fmt.Errorf("%w: %s > %v", ErrSnapshot, src, err)
	}
	if err = os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("%w: os.Rename(%s) > %v", ErrSnapshot, dst, err)
	}
	return nil
}

func copyToTemp(src, dst string) (tmpPath string, err error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("%w: os.Open(%s) > %v", ErrSnapshot, src, err)
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: os.MkdirAll(%s) > %v", ErrSnapshot, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: os.CreateTemp(%s) > %v", ErrSnapshot, dir, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return "", fmt.Errorf("%w: io.Copy > %v", ErrSnapshot, err)
	}
	if err = tmp.Sync(); err != nil {
		return "", fmt.Errorf("%w: tmp.Sync > %v", ErrSnapshot, err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: tmp.Close > %v", ErrSnapshot, err)
	}
	return tmp.Name(), nil
}

// prepareSnapshot opens the copied file as SQLite and ensures the schema.
func prepareSnapshot(ctx context.Context, path string) error {
	db, err := database.OpenSQLite(path, database.SQLiteOptions{})
	if err != nil {
		return fmt.Errorf("database.OpenSQLite > %w", err)
	}
	if err := createSchema(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("db.Close > %w", err)
	}
	return nil
}
