package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"squish/internal/deps"
	"squish/internal/plan"
)

func newToolsCommand(ctx *commandContext) *cobra.Command {
	var missingOnly bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Check which external tools the stage plan can find",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stagePlan, err := plan.Build(cfg)
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.FromPlan(stagePlan))
			missing := deps.Missing(statuses)
			if missingOnly {
				statuses = missing
			}

			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				location := status.Path
				if !status.Available {
					location = status.Detail
				}
				rows = append(rows, []string{status.Name, yesNo(status.Available), location, status.Description})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Tool", "Found", "Location", "Used By"}, rows, nil))
			if len(missing) > 0 {
				fmt.Fprintf(out, "%d tools missing; stages using them fail and leave files unchanged\n", len(missing))
			} else {
				fmt.Fprintln(out, "All tools available")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&missingOnly, "missing", false, "Only list missing tools")
	return cmd
}
