package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"quarry/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove leftover partial download files",
		Long: "Clean removes .part staging files under the install root. By default\n" +
			"every partial is removed; --older-than keeps recent partials so an\n" +
			"interrupted transfer can still resume.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if dryRun {
				partials, err := staging.ListPartials(cfg.Paths.InstallRoot)
				if err != nil {
					return fmt.Errorf("list partial files: %w", err)
				}
				if len(partials) == 0 {
					fmt.Fprintln(out, "No partial files found")
					return nil
				}
				for _, partial := range partials {
					fmt.Fprintf(out, "%s (%s, modified %s)\n",
						partial.Path, formatSize(partial.Size), partial.ModTime.Format(time.RFC3339))
				}
				return nil
			}

			result := staging.CleanStale(cfg.Paths.InstallRoot, olderThan, logger)
			for _, path := range result.Removed {
				fmt.Fprintf(out, "Removed %s\n", path)
			}
			if len(result.Removed) == 0 && len(result.Errors) == 0 {
				fmt.Fprintln(out, "Nothing to clean")
			}
			if len(result.Errors) > 0 {
				for _, cleanupErr := range result.Errors {
					fmt.Fprintf(out, "Failed %s: %v\n", cleanupErr.Path, cleanupErr.Error)
				}
				return fmt.Errorf("%d partial files could not be removed", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Only remove partials older than this duration")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List partial files without removing them")
	return cmd
}
