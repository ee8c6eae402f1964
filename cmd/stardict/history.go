package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/stardict/internal/cli"
	"github.com/at-ishikawa/stardict/internal/history"
)

func newHistoryCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "history",
		Short: "Show or manage the lookup history",
	}
	command.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List looked up words, most recent first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withHistory(cmd.Context(), func(ctx context.Context, repo history.Repository) error {
					records, err := repo.ListAll(ctx)
					if err != nil {
						return fmt.Errorf("repository.ListAll > %w", err)
					}
					return cli.NewPrinter(cmd.OutOrStdout()).PrintHistory(records)
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every history record",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withHistory(cmd.Context(), func(ctx context.Context, repo history.Repository) error {
					if err := repo.Clear(ctx); err != nil {
						return fmt.Errorf("repository.Clear > %w", err)
					}
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "export <file>",
			Short: "Write the history to a YAML file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withHistory(cmd.Context(), func(ctx context.Context, repo history.Repository) error {
					records, err := repo.ListAll(ctx)
					if err != nil {
						return fmt.Errorf("repository.ListAll > %w", err)
					}
					if err := history.ExportYAML(args[0], records); err != nil {
						return fmt.Errorf("history.ExportYAML > %w", err)
					}
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(records), args[0])
					return err
				})
			},
		},
	)
	return command
}

func withHistory(ctx context.Context, fn func(ctx context.Context, repo history.Repository) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openHistory(ctx, cfg.History, historyDriver)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()
	return fn(ctx, history.NewRepository(db))
}
