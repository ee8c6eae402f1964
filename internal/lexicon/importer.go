package lexicon

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/stardict/internal/database"
)

var importColumns = []string{
	"word", "phonetic", "definition", "translation", "pos",
	"collins", "oxford", "tag", "bnc", "frq", "exchange", "detail", "audio",
}

// Import builds a snapshot database at dbPath from an ECDICT CSV export and
// returns the number of inserted entries. Headwords that repeat an earlier
// row, ignoring case, are skipped. dbPath is only replaced once every row
// has been written.
func Import(ctx context.Context, r io.Reader, dbPath string) (inserted int, err error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dbPath)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("os.CreateTemp(%s) > %w", dir, err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("tmp.Close > %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	db, err := database.OpenSQLite(tmpPath, database.SQLiteOptions{})
	if err != nil {
		return 0, fmt.Errorf("database.OpenSQLite > %w", err)
	}
	inserted, skipped, err := importRows(ctx, db, r)
	if closeErr := db.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("db.Close > %w", closeErr)
	}
	if err != nil {
		return 0, err
	}

	if err := os.Rename(tmpPath, dbPath); err != nil {
		return 0, fmt.Errorf("os.Rename(%s) > %w", dbPath, err)
	}
	slog.Default().Info("imported lexicon",
		"path", dbPath,
		"inserted", inserted,
		"skipped", skipped,
	)
	return inserted, nil
}

func importRows(ctx context.Context, db *sqlx.DB, r io.Reader) (inserted, skipped int, err error) {
	if err := createSchema(ctx, db); err != nil {
		return 0, 0, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, 0, fmt.Errorf("csv is empty")
	}
	if err != nil {
		return 0, 0, fmt.Errorf("reader.Read(header) > %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	if _, ok := index["word"]; !ok {
		return 0, 0, fmt.Errorf("csv header has no word column: %v", header)
	}

	err = database.RunInTx(ctx, db, func(ctx context.Context, tx *sqlx.Tx) error {
		for line := 2; ; line++ {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reader.Read(line %d) > %w", line, err)
			}

			row, err := parseRow(record, index)
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			if row == nil {
				skipped++
				continue
			}

			ok, err := insertRow(ctx, tx, row)
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			if ok {
				inserted++
			} else {
				skipped++
			}
		}
	})
	if err != nil {
		return 0, 0, err
	}
	return inserted, skipped, nil
}

// parseRow maps a CSV record onto insert values keyed by column. It returns
// nil for rows without a headword.
func parseRow(record []string, index map[string]int) (map[string]any, error) {
	cell := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	word := cell("word")
	if word == "" {
		return nil, nil
	}

	row := map[string]any{
		"word": word,
		"sw":   Strip(word),
	}
	for _, name := range importColumns {
		value := cell(name)
		switch name {
		case "word":
		case "collins", "oxford":
			n, err := parseInt(name, value)
			if err != nil {
				return nil, err
			}
			if n == nil {
				row[name] = 0
			} else {
				row[name] = *n
			}
		case "bnc", "frq":
			n, err := parseInt(name, value)
			if err != nil {
				return nil, err
			}
			if n == nil {
				row[name] = nil
			} else {
				row[name] = *n
			}
		default:
			if value == "" {
				row[name] = nil
			} else {
				row[name] = value
			}
		}
	}
	return row, nil
}

func parseInt(column, value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", column, value, err)
	}
	return &n, nil
}

func insertRow(ctx context.Context, tx *sqlx.Tx, row map[string]any) (bool, error) {
	query, args, err := sq.Insert(tableName).
		Options("OR IGNORE").
		SetMap(row).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert query: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("tx.ExecContext(stardict) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("result.RowsAffected > %w", err)
	}
	return affected > 0, nil
}
