package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quarry/internal/acquire"
	"quarry/internal/layout"
)

type artifactStatus struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	State string `json:"state"`
	Size  int64  `json:"size_bytes,omitempty"`
	Path  string `json:"path"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show install state for every manifest artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			states := manager.Status()
			var statuses []artifactStatus
			for _, artifact := range manager.ListRequired() {
				statuses = append(statuses, artifactStatus{
					Name:  artifact.Name,
					Kind:  artifact.Kind,
					State: string(states[artifact.Name]),
					Size:  artifact.SizeBytes,
					Path:  layout.Resolve(artifact, cfg.Paths.InstallRoot),
				})
			}

			if jsonOut {
				return writeJSON(cmd, statuses)
			}

			if len(statuses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Manifest declares no artifacts")
				return nil
			}

			rows := make([][]string, 0, len(statuses))
			installed := 0
			for _, s := range statuses {
				if s.State == string(acquire.StateInstalled) {
					installed++
				}
				rows = append(rows, []string{s.Name, s.Kind, s.State, formatSize(s.Size), s.Path})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"NAME", "KIND", "STATE", "SIZE", "PATH"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d of %d installed\n", installed, len(statuses))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
