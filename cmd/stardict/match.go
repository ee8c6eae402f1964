package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/stardict/internal/cli"
	"github.com/at-ishikawa/stardict/internal/lexicon"
	"github.com/at-ishikawa/stardict/internal/lookup"
)

func newMatchCommand() *cobra.Command {
	var opts lookup.SuggestOptions
	command := &cobra.Command{
		Use:   "match <word>",
		Short: "List headwords at or after a word in dictionary order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.Limit < 0 {
				return fmt.Errorf("--limit must not be negative: %d", opts.Limit)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := openLexicon(ctx, cfg.Lexicon)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			// Suggestions never touch the history log
			service := lookup.NewService(store, nil)
			suggestions, err := service.Suggest(ctx, args[0], opts)
			if err != nil {
				return fmt.Errorf("service.Suggest > %w", err)
			}
			return cli.NewPrinter(cmd.OutOrStdout()).PrintSuggestions(suggestions)
		},
	}
	command.Flags().IntVar(&opts.Limit, "limit", lexicon.DefaultLimit, "Maximum number of suggestions")
	command.Flags().BoolVar(&opts.Strip, "strip", false, "Compare words without punctuation, spaces, or case")
	command.Flags().BoolVar(&opts.Strict, "strict", false, "Only show words starting with the query")
	return command
}
