// Package lookup resolves user queries against the lexicon and keeps the
// history log in step with them.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/at-ishikawa/stardict/internal/history"
	"github.com/at-ishikawa/stardict/internal/lexicon"
)

var (
	ErrEmptyQuery = errors.New("lookup: query is empty")
	ErrNotFound   = errors.New("lookup: word not found")
)

//go:generate mockgen -source=service.go -destination=../mocks/lookup/mock_service.go -package=mock_lookup Lexicon

// Lexicon is the read side of the dictionary. *lexicon.Store implements it.
type Lexicon interface {
	Lookup(ctx context.Context, word string) (*lexicon.WordEntry, error)
	Match(ctx context.Context, word string, opts lexicon.MatchOptions) ([]lexicon.Suggestion, error)
	Count(ctx context.Context) (int, error)
}

// Service serializes every call into the lexicon and the history log, so a
// single Service can be shared between goroutines.
type Service struct {
	mu      sync.Mutex
	lexicon Lexicon
	history history.Repository
}

func NewService(lex Lexicon, repo history.Repository) *Service {
	return &Service{
		lexicon: lex,
		history: repo,
	}
}

// Search looks query up and records the entry's headword in the history.
// It returns ErrNotFound when the lexicon has no such word.
func (s *Service) Search(ctx context.Context, query string) (*lexicon.WordEntry, error) {
	word := strings.TrimSpace(query)
	if word == "" {
		return nil, ErrEmptyQuery
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.lexicon.Lookup(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("lexicon.Lookup(%s) > %w", word, err)
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, word)
	}

	if err := s.history.Record(ctx, entry.Word, entry.Phonetic, entry.Translation); err != nil {
		return nil, fmt.Errorf("history.Record(%s) > %w", entry.Word, err)
	}
	slog.Default().Debug("recorded lookup", "query", query, "word", entry.Word)
	return entry, nil
}

type SuggestOptions struct {
	Limit int
	// Strip matches on the stripped form of the words.
	Strip bool
	// Strict drops suggestions that do not start with the query.
	Strict bool
}

// Suggest lists the words at or after query in dictionary order. An empty
// query has no suggestions.
func (s *Service) Suggest(ctx context.Context, query string, opts SuggestOptions) ([]lexicon.Suggestion, error) {
	word := strings.TrimSpace(query)
	if word == "" {
		return []lexicon.Suggestion{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	suggestions, err := s.lexicon.Match(ctx, word, lexicon.MatchOptions{
		Limit: opts.Limit,
		Strip: opts.Strip,
	})
	if err != nil {
		return nil, fmt.Errorf("lexicon.Match(%s) > %w", word, err)
	}
	if opts.Strict {
		suggestions = lexicon.HasPrefix(suggestions, word, opts.Strip)
	}
	return suggestions, nil
}

// History returns the lookups, most recent first.
func (s *Service) History(ctx context.Context) ([]history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.history.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("history.ListAll > %w", err)
	}
	return records, nil
}

func (s *Service) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.history.Clear(ctx); err != nil {
		return fmt.Errorf("history.Clear > %w", err)
	}
	return nil
}

// Count returns the number of lexicon entries.
func (s *Service) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.lexicon.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("lexicon.Count > %w", err)
	}
	return count, nil
}
