package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stacks/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories and provider credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			failed := 0
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				if !result.Passed {
					failed++
				}
				rows = append(rows, []string{
					result.Name,
					checkCell(result.Passed, colorize),
					result.Detail,
				})
			}

			table := renderTable([]string{"Check", "Status", "Detail"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft})
			fmt.Fprintln(out, table)

			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
