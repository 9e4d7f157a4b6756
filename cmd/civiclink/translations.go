package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func translationsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translations",
		Short: "Inspect the translation glossary through the API",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show glossary statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := opts.client().TranslationStats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "translations:  %d\n", stats.TotalTranslations)
			fmt.Fprintf(out, "verified:      %d (%.1f%%)\n", stats.VerifiedTranslations, stats.VerificationRate)
			fmt.Fprintf(out, "total usage:   %d\n", stats.TotalUsage)
			fmt.Fprintf(out, "languages:     %d\n", stats.LanguageCount)
			fmt.Fprintf(out, "categories:    %d\n", stats.CategoryCount)
			return nil
		},
	})

	return cmd
}
