package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/stardict/internal/config"
	"github.com/at-ishikawa/stardict/internal/database"
	"github.com/at-ishikawa/stardict/internal/history"
	"github.com/at-ishikawa/stardict/internal/lexicon"
	"github.com/at-ishikawa/stardict/internal/lookup"
	"github.com/at-ishikawa/stardict/internal/speech"
)

// Driver overrides history.driver from the command line.
type Driver string

var _ pflag.Value = (*Driver)(nil)

func (d *Driver) Set(value string) error {
	for _, driver := range config.AllDrivers {
		if string(driver) == value {
			*d = Driver(value)
			return nil
		}
	}
	return fmt.Errorf("invalid driver: %s. Possible values are %v", value, config.AllDrivers)
}

func (d *Driver) String() string {
	return string(*d)
}

func (d *Driver) Type() string {
	return "Driver"
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// dictionary bundles the stores one command works with.
type dictionary struct {
	store     *lexicon.Store
	historyDB *sqlx.DB
	service   *lookup.Service
}

func openLexicon(ctx context.Context, cfg config.LexiconConfig) (*lexicon.Store, error) {
	store, err := lexicon.Open(ctx, lexicon.Options{
		DatabasePath: cfg.DatabasePath,
		SnapshotPath: cfg.SnapshotPath,
	})
	if err != nil {
		return nil, fmt.Errorf("lexicon.Open > %w", err)
	}
	return store, nil
}

func openHistory(ctx context.Context, cfg config.HistoryConfig, driver Driver) (*sqlx.DB, error) {
	if driver != "" {
		cfg.Driver = config.Driver(driver)
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("database.Open > %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database.Migrate > %w", err)
	}
	return db, nil
}

func openDictionary(ctx context.Context, cfg *config.Config, driver Driver) (*dictionary, error) {
	store, err := openLexicon(ctx, cfg.Lexicon)
	if err != nil {
		return nil, err
	}
	historyDB, err := openHistory(ctx, cfg.History, driver)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &dictionary{
		store:     store,
		historyDB: historyDB,
		service:   lookup.NewService(store, history.NewRepository(historyDB)),
	}, nil
}

func (d *dictionary) Close() error {
	var errs []error
	if err := d.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store.Close > %w", err))
	}
	if err := d.historyDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("historyDB.Close > %w", err))
	}
	return errors.Join(errs...)
}

func closeDictionary(d *dictionary) {
	if err := d.Close(); err != nil {
		slog.Default().Warn("failed to close dictionary", "error", err)
	}
}

// newSynthesizer returns the speech client, wrapped in a file cache when one
// is configured, and a function releasing it.
func newSynthesizer(cfg config.SpeechConfig) (speech.Synthesizer, func()) {
	client := speech.NewClient(cfg)
	closeClient := func() {
		_ = client.Close()
	}
	if cfg.CacheDirectory == "" {
		return client, closeClient
	}
	return speech.NewFileCache(cfg.CacheDirectory, client), closeClient
}
