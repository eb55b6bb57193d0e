package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show one artifact's descriptor and install state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}

			name := args[0]
			artifact, err := manager.Describe(name)
			if err != nil {
				return err
			}
			state, err := manager.StateOf(name)
			if err != nil {
				return err
			}
			dest, err := manager.DestinationPath(name)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, struct {
					Name        string `json:"name"`
					Kind        string `json:"kind"`
					URL         string `json:"url"`
					Filename    string `json:"filename"`
					Size        int64  `json:"size_bytes,omitempty"`
					Checksum    string `json:"checksum,omitempty"`
					Digest      string `json:"checksum_type,omitempty"`
					Version     string `json:"version,omitempty"`
					Description string `json:"description,omitempty"`
					State       string `json:"state"`
					Path        string `json:"path"`
				}{
					Name:        artifact.Name,
					Kind:        artifact.Kind,
					URL:         artifact.SourceURL,
					Filename:    artifact.Filename,
					Size:        artifact.SizeBytes,
					Checksum:    artifact.Checksum,
					Digest:      artifact.ChecksumType,
					Version:     artifact.Version,
					Description: artifact.Description,
					State:       string(state),
					Path:        dest,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:        %s\n", artifact.Name)
			fmt.Fprintf(out, "Kind:        %s\n", artifact.Kind)
			fmt.Fprintf(out, "URL:         %s\n", artifact.SourceURL)
			fmt.Fprintf(out, "Filename:    %s\n", artifact.Filename)
			fmt.Fprintf(out, "Size:        %s\n", formatSize(artifact.SizeBytes))
			fmt.Fprintf(out, "Digest:      %s\n", artifact.ChecksumType)
			fmt.Fprintf(out, "Verifiable:  %s\n", yesNo(artifact.HasChecksum()))
			if artifact.Version != "" {
				fmt.Fprintf(out, "Version:     %s\n", artifact.Version)
			}
			if artifact.Description != "" {
				fmt.Fprintf(out, "Description: %s\n", artifact.Description)
			}
			fmt.Fprintf(out, "State:       %s\n", state)
			fmt.Fprintf(out, "Path:        %s\n", dest)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}
