package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"squish/internal/classify"
	"squish/internal/plan"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [kind]",
		Short: "Show the stages run for each content kind",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stagePlan, err := plan.Build(cfg)
			if err != nil {
				return err
			}

			kinds := stagePlan.Kinds()
			if len(args) == 1 {
				kind := classify.Kind(strings.ToLower(strings.TrimSpace(args[0])))
				if len(stagePlan.Stages(kind)) == 0 {
					return fmt.Errorf("no stages for kind %q (disabled or unknown)", kind)
				}
				kinds = []classify.Kind{kind}
			}

			var rows [][]string
			for _, kind := range kinds {
				for i, spec := range stagePlan.Stages(kind) {
					rows = append(rows, []string{
						string(kind),
						fmt.Sprintf("%d", i+1),
						spec.Name,
						spec.Template.String(),
						spec.ExitDescription(),
						yesNo(spec.Applies != nil),
					})
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Kind", "#", "Stage", "Command", "Exit Codes", "Conditional"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
