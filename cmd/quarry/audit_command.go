package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Verify content digests of all installed artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}

			results := manager.Audit()

			if jsonOut {
				return writeJSON(cmd, results)
			}

			rows := make([][]string, 0, len(results))
			failed := 0
			for _, artifact := range manager.ListRequired() {
				verdict := "ok"
				if !results[artifact.Name] {
					verdict = "FAILED"
					failed++
				}
				rows = append(rows, []string{artifact.Name, artifact.ChecksumType, verdict})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"NAME", "DIGEST", "VERDICT"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			if failed > 0 {
				return fmt.Errorf("%d of %d artifacts failed verification", failed, len(results))
			}
			fmt.Fprintf(out, "All %d artifacts verified\n", len(results))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
