package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/stardict/internal/cli"
)

func newLookupCommand() *cobra.Command {
	var speak bool
	command := &cobra.Command{
		Use:   "lookup <word>",
		Short: "Look up a word and record it in the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dict, err := openDictionary(ctx, cfg, historyDriver)
			if err != nil {
				return err
			}
			defer closeDictionary(dict)

			entry, err := dict.service.Search(ctx, args[0])
			if err != nil {
				return fmt.Errorf("service.Search > %w", err)
			}

			printer := cli.NewPrinter(cmd.OutOrStdout())
			if err := printer.PrintEntry(entry); err != nil {
				return err
			}
			if !speak {
				return nil
			}

			synthesizer, closeSynthesizer := newSynthesizer(cfg.Speech)
			defer closeSynthesizer()
			audio, err := synthesizer.Synthesize(ctx, entry.Word)
			if err != nil {
				return printer.PrintWarning("failed to synthesize speech for %s: %v", entry.Word, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Audio: %s\n", audio)
			return err
		},
	}
	command.Flags().BoolVar(&speak, "speak", false, "Print the URL of a pronunciation of the word")
	return command
}
