package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List artifacts declared in the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}

			artifacts := manager.ListRequired()
			if jsonOut {
				return writeJSON(cmd, artifacts)
			}

			if len(artifacts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Manifest declares no artifacts")
				return nil
			}

			rows := make([][]string, 0, len(artifacts))
			for _, artifact := range artifacts {
				version := artifact.Version
				if version == "" {
					version = "-"
				}
				rows = append(rows, []string{
					artifact.Name,
					artifact.Kind,
					version,
					formatSize(artifact.SizeBytes),
					artifact.ChecksumType,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"NAME", "KIND", "VERSION", "SIZE", "DIGEST"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
