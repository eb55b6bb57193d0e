package main

import (
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "fetch [name...]",
		Short: "Download and verify artifacts",
		Long: "Fetch downloads the named artifacts, or every artifact in the manifest\n" +
			"when no names are given. Interrupted transfers resume from the staging\n" +
			"file; installed artifacts are skipped unless --force is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			out := cmd.OutOrStdout()

			names := args
			if len(names) == 0 && force {
				for _, artifact := range manager.ListRequired() {
					names = append(names, artifact.Name)
				}
			}

			if len(names) == 0 {
				result, err := manager.AcquireAll(signalCtx, newProgress("fetching"), true)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Fetched %d, skipped %d, failed %d\n",
					result.Succeeded, result.Skipped, result.Failed)
				if result.Failed > 0 {
					failed := make([]string, 0, len(result.Failures))
					for name := range result.Failures {
						failed = append(failed, name)
					}
					sort.Strings(failed)
					for _, name := range failed {
						fmt.Fprintf(out, "  %s: %v\n", name, result.Failures[name])
					}
					return fmt.Errorf("%d artifacts failed", result.Failed)
				}
				return nil
			}

			for _, name := range names {
				if err := manager.Acquire(signalCtx, name, newProgress(name), force); err != nil {
					return err
				}
				dest, err := manager.DestinationPath(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s installed at %s\n", name, dest)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Refetch even when already installed")
	return cmd
}
