package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSpeakCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "speak <word>",
		Short: "Print the URL of a pronunciation of a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			synthesizer, closeSynthesizer := newSynthesizer(cfg.Speech)
			defer closeSynthesizer()
			audio, err := synthesizer.Synthesize(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("synthesizer.Synthesize(%s) > %w", args[0], err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), audio)
			return err
		},
	}
}
