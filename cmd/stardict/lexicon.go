package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/stardict/internal/lexicon"
)

func newLexiconCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "lexicon",
		Short: "Build or inspect the lexicon database",
	}
	command.AddCommand(newLexiconImportCommand(), newLexiconInfoCommand())
	return command
}

func newLexiconImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <csv> <db>",
		Short: "Build a lexicon snapshot from an ECDICT CSV file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			csvPath, dbPath := args[0], args[1]
			file, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("os.Open(%s) > %w", csvPath, err)
			}
			defer func() {
				_ = file.Close()
			}()

			inserted, err := lexicon.Import(cmd.Context(), file, dbPath)
			if err != nil {
				return fmt.Errorf("lexicon.Import > %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries into %s\n", inserted, dbPath)
			return err
		},
	}
}

func newLexiconInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show where the lexicon is and how many entries it has",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openLexicon(cmd.Context(), cfg.Lexicon)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			count, err := store.Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("store.Count > %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Database: %s\nSnapshot: %s\nEntries:  %d\n",
				cfg.Lexicon.DatabasePath, cfg.Lexicon.SnapshotPath, count)
			return err
		},
	}
}
