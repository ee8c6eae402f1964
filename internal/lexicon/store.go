// Package lexicon implements the read-mostly dictionary store backed by the
// ECDICT stardict table. The store is seeded once from a bundled snapshot and
// never written to afterwards.
package lexicon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/stardict/internal/database"
)

const (
	tableName    = "stardict"
	DefaultLimit = 10
)

var (
	// ErrClosed is returned by every operation on a store after Close.
	ErrClosed = errors.New("lexicon: store is closed")
	// ErrSnapshot marks failures to seed the store from its snapshot.
	ErrSnapshot = errors.New("lexicon: cannot seed store from snapshot")
)

var columns = []string{
	"id", "word", "sw", "phonetic", "definition", "translation", "pos",
	"collins", "oxford", "tag", "bnc", "frq", "exchange", "detail", "audio",
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS stardict (
		id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL UNIQUE,
		word VARCHAR(64) COLLATE NOCASE NOT NULL UNIQUE,
		sw VARCHAR(64) COLLATE NOCASE NOT NULL,
		phonetic VARCHAR(64),
		definition TEXT,
		translation TEXT,
		pos VARCHAR(16),
		collins INTEGER DEFAULT(0),
		oxford INTEGER DEFAULT(0),
		tag VARCHAR(64),
		bnc INTEGER DEFAULT(NULL),
		frq INTEGER DEFAULT(NULL),
		exchange TEXT,
		detail TEXT,
		audio TEXT
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS stardict_1 ON stardict (word)`,
	`CREATE INDEX IF NOT EXISTS stardict_2 ON stardict (sw, word COLLATE NOCASE)`,
}

type Options struct {
	// DatabasePath is where the working copy of the lexicon lives.
	DatabasePath string
	// SnapshotPath is the bundled database copied to DatabasePath when it
	// does not exist yet.
	SnapshotPath string
}

// Store is a handle on the lexicon database. It is not safe for concurrent
// use; callers serialize access and call Close exactly once.
type Store struct {
	db     *sqlx.DB
	closed atomic.Bool
}

type entryRow struct {
	ID          int64          `db:"id"`
	Word        string         `db:"word"`
	SW          string         `db:"sw"`
	Phonetic    sql.NullString `db:"phonetic"`
	Definition  sql.NullString `db:"definition"`
	Translation sql.NullString `db:"translation"`
	POS         sql.NullString `db:"pos"`
	Collins     sql.NullInt64  `db:"collins"`
	Oxford      sql.NullInt64  `db:"oxford"`
	Tag         sql.NullString `db:"tag"`
	BNC         sql.NullInt64  `db:"bnc"`
	FRQ         sql.NullInt64  `db:"frq"`
	Exchange    sql.NullString `db:"exchange"`
	Detail      sql.NullString `db:"detail"`
	Audio       sql.NullString `db:"audio"`
}

// Open opens the lexicon at opts.DatabasePath, seeding it from the snapshot
// on first use. An existing database is reused as is.
func Open(ctx context.Context, opts Options) (*Store, error) {
	_, err := os.Stat(opts.DatabasePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if opts.SnapshotPath == "" {
			return nil, fmt.Errorf("%w: %s does not exist and no snapshot is configured", ErrSnapshot, opts.DatabasePath)
		}
		slog.Default().Info("seeding lexicon from snapshot",
			"snapshot", opts.SnapshotPath,
			"database", opts.DatabasePath,
		)
		if err := seedSnapshot(ctx, opts.SnapshotPath, opts.DatabasePath); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("os.Stat(%s) > %w", opts.DatabasePath, err)
	}

	db, err := database.OpenSQLite(opts.DatabasePath, database.SQLiteOptions{})
	if err != nil {
		return nil, fmt.Errorf("database.OpenSQLite > %w", err)
	}
	if err := createSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func createSchema(ctx context.Context, db sqlx.ExecerContext) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db.ExecContext(schema) > %w", err)
		}
	}
	return nil
}

// Lookup returns the entry whose word equals word, ignoring case, or nil
// when there is none.
func (s *Store) Lookup(ctx context.Context, word string) (*WordEntry, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	query, args, err := sq.Select(columns...).
		From(tableName).
		Where("word = ? COLLATE NOCASE", word).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lookup query: %w", err)
	}

	var row entryRow
	err = s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(stardict) > %w", err)
	}
	entry := row.toEntry()
	return &entry, nil
}

type MatchOptions struct {
	// Limit caps the number of suggestions; DefaultLimit when <= 0.
	Limit int
	// Strip compares word against the sw column instead of word. The query
	// itself is bound unchanged.
	Strip bool
}

// Match returns up to Limit entries whose key sorts at or after word, in
// ascending key order. It is a range scan, not a prefix filter: results may
// not start with word. See HasPrefix.
func (s *Store) Match(ctx context.Context, word string, opts MatchOptions) ([]Suggestion, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	builder := sq.Select("id", "word").From(tableName).Limit(uint64(limit))
	if opts.Strip {
		builder = builder.Where(sq.GtOrEq{"sw": word}).OrderBy("sw", "word COLLATE NOCASE")
	} else {
		builder = builder.Where(sq.GtOrEq{"word": word}).OrderBy("word COLLATE NOCASE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build match query: %w", err)
	}

	suggestions := make([]Suggestion, 0, limit)
	if err := s.db.SelectContext(ctx, &suggestions, query, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(stardict) > %w", err)
	}
	return suggestions, nil
}

// Count returns the number of entries in the lexicon.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}

	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+tableName); err != nil {
		return 0, fmt.Errorf("db.GetContext(count) > %w", err)
	}
	return count, nil
}

// Close releases the database handle. Calling it more than once returns
// ErrClosed.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return s.db.Close()
}

func (r entryRow) toEntry() WordEntry {
	entry := WordEntry{
		ID:           r.ID,
		Word:         r.Word,
		StrippedWord: r.SW,
		Phonetic:     nullString(r.Phonetic),
		Definition:   nullString(r.Definition),
		Translation:  nullString(r.Translation),
		PartOfSpeech: nullString(r.POS),
		Collins:      int(r.Collins.Int64),
		Oxford:       int(r.Oxford.Int64),
		Tag:          nullString(r.Tag),
		BNC:          nullInt(r.BNC),
		FRQ:          nullInt(r.FRQ),
		Exchange:     nullString(r.Exchange),
		Audio:        nullString(r.Audio),
	}
	if r.Detail.Valid {
		entry.Detail = decodeDetail(r.Detail.String)
	}
	return entry
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
