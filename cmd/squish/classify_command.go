package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"squish/internal/classify"
	"squish/internal/logging"
	"squish/internal/pipeline"
	"squish/internal/plan"
	"squish/internal/stageexec"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file>...",
		Short: "Show the content kinds detected for files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stagePlan, err := plan.Build(cfg)
			if err != nil {
				return err
			}
			logger := logging.NewNop()
			runner := pipeline.New(cfg, stagePlan, stageexec.New(cfg, logger), logger)

			rows := make([][]string, 0, len(args))
			for _, path := range args {
				tags, err := runner.Classify(path)
				if err != nil {
					rows = append(rows, []string{path, "-", "-", err.Error()})
					continue
				}
				kind := "-"
				if resolved := stagePlan.Resolve(tags); len(resolved) > 0 {
					kind = string(resolved[0])
				}
				note := ""
				if eligible, reason := runner.Eligible(path); !eligible {
					note = reason
				}
				rows = append(rows, []string{path, classify.Describe(tags), kind, note})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Tags", "Planned Kind", "Note"},
				rows,
				nil,
			))
			return nil
		},
	}
}
