// Package history stores the log of past lookups, one record per word.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/stardict/internal/database"
)

const tableName = "history"

// Record is the latest lookup of a word.
type Record struct {
	ID            int64     `db:"id" json:"id" yaml:"-"`
	Word          string    `db:"word" json:"word" yaml:"word"`
	Phonetic      *string   `db:"phonetic" json:"phonetic,omitempty" yaml:"phonetic,omitempty"`
	Translation   *string   `db:"translation" json:"translation,omitempty" yaml:"translation,omitempty"`
	LastQueriedAt time.Time `db:"last_queried_at" json:"last_queried_at" yaml:"last_queried_at"`
}

//go:generate mockgen -source=repository.go -destination=../mocks/history/mock_repository.go -package=mock_history Repository

// Repository defines operations on the history log.
type Repository interface {
	Record(ctx context.Context, word string, phonetic, translation *string) error
	ListAll(ctx context.Context) ([]Record, error)
	Clear(ctx context.Context) error
}

// DBRepository implements Repository on SQLite or MySQL.
type DBRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

type Option func(*DBRepository)

// WithClock replaces the time source used for last_queried_at.
func WithClock(now func() time.Time) Option {
	return func(r *DBRepository) {
		r.now = now
	}
}

// NewRepository creates a DBRepository. The schema must already be migrated.
func NewRepository(db *sqlx.DB, opts ...Option) *DBRepository {
	r := &DBRepository{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record inserts word into the log, or refreshes its phonetic, translation
// and last_queried_at when it is already there. Words match exactly.
func (r *DBRepository) Record(ctx context.Context, word string, phonetic, translation *string) error {
	queriedAt := r.now().UTC()

	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		query, args, err := sq.Select("id").From(tableName).Where(sq.Eq{"word": word}).ToSql()
		if err != nil {
			return fmt.Errorf("build select query: %w", err)
		}

		var id int64
		err = tx.GetContext(ctx, &id, query, args...)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			query, args, err = sq.Insert(tableName).
				Columns("word", "phonetic", "translation", "last_queried_at").
				Values(word, phonetic, translation, queriedAt).
				ToSql()
		case err != nil:
			return fmt.Errorf("tx.GetContext(history) > %w", err)
		default:
			query, args, err = sq.Update(tableName).
				Set("phonetic", phonetic).
				Set("translation", translation).
				Set("last_queried_at", queriedAt).
				Where(sq.Eq{"id": id}).
				ToSql()
		}
		if err != nil {
			return fmt.Errorf("build upsert query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("tx.ExecContext(history) > %w", err)
		}
		return nil
	})
}

// ListAll returns every record, most recent lookup first.
func (r *DBRepository) ListAll(ctx context.Context) ([]Record, error) {
	query, args, err := sq.Select("id", "word", "phonetic", "translation", "last_queried_at").
		From(tableName).
		OrderBy("last_queried_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var records []Record
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(history) > %w", err)
	}
	for i := range records {
		records[i].LastQueriedAt = records[i].LastQueriedAt.UTC()
	}
	return records, nil
}

// Clear deletes every record.
func (r *DBRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM "+tableName); err != nil {
		return fmt.Errorf("db.ExecContext(DELETE history) > %w", err)
	}
	return nil
}
