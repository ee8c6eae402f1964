package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/stardict/internal/bootstrap"
	"github.com/at-ishikawa/stardict/internal/config"
	"github.com/at-ishikawa/stardict/internal/database"
	"github.com/at-ishikawa/stardict/internal/history"
	"github.com/at-ishikawa/stardict/internal/lexicon"
	"github.com/at-ishikawa/stardict/internal/lookup"
	"github.com/at-ishikawa/stardict/internal/server"
	"github.com/at-ishikawa/stardict/internal/speech"
)

var configFile string

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "stardict-server",
		Short:         "Stardict dictionary HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func reportError(w io.Writer, err error) {
	if _, fprintfErr := fmt.Fprintf(w, "failed to execute a command: %+v\n", err); fprintfErr != nil {
		panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
	}
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}
	logger := slog.New(newLogHandler(os.Stderr, cfg.Log, os.Getenv("APP_ENV")))
	slog.SetDefault(logger)

	store, err := lexicon.Open(ctx, lexicon.Options{
		DatabasePath: cfg.Lexicon.DatabasePath,
		SnapshotPath: cfg.Lexicon.SnapshotPath,
	})
	if err != nil {
		return fmt.Errorf("lexicon.Open > %w", err)
	}
	app.AddShutdownHook(func(ctx context.Context) error {
		return store.Close()
	})

	historyDB, err := database.Open(cfg.History)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("database.Open > %w", err)
	}
	app.AddShutdownHook(func(ctx context.Context) error {
		return historyDB.Close()
	})
	if err := database.Migrate(ctx, historyDB); err != nil {
		return errors.Join(fmt.Errorf("database.Migrate > %w", err), historyDB.Close(), store.Close())
	}

	speechClient := speech.NewClient(cfg.Speech)
	app.AddShutdownHook(func(ctx context.Context) error {
		return speechClient.Close()
	})
	var synthesizer speech.Synthesizer = speechClient
	if cfg.Speech.CacheDirectory != "" {
		synthesizer = speech.NewFileCache(cfg.Speech.CacheDirectory, speechClient)
	}

	service := lookup.NewService(store, history.NewRepository(historyDB))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.NewRouter(service, synthesizer, cfg.Server, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	app.AddShutdownHook(srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		logger.Info("starting server", "addr", srv.Addr, "history_driver", cfg.History.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("srv.ListenAndServe > %w", err)
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

// newLogHandler builds the handler for cfg. APP_ENV=dev forces colored
// output regardless of the configured format.
func newLogHandler(w io.Writer, cfg config.LogConfig, appEnv string) slog.Handler {
	level := new(slog.LevelVar)
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}

	format := cfg.Format
	if strings.ToLower(appEnv) == "dev" {
		format = "tint"
	}
	switch format {
	case "tint":
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
		})
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}
}
