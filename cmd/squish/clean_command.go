package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"squish/internal/logging"
	"squish/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var list bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove leftover temporary working copies",
		Long: "Remove working copies left in the temp directory by interrupted runs.\n" +
			"Only entries older than one hour are removed unless --all is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if list {
				entries, err := staging.List(cfg.TempDir())
				if err != nil {
					return fmt.Errorf("list temp directory: %w", err)
				}
				if len(entries) == 0 {
					fmt.Fprintln(out, "No temporary files")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						entry.Name,
						humanize.IBytes(uint64(entry.Size)),
						humanize.Time(entry.ModTime),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Name", "Size", "Modified"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft}))
				return nil
			}

			maxAge := staging.StaleAfter
			if all {
				maxAge = 0
			}
			logger, closeLog, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			defer func() { _ = closeLog() }()

			result := staging.CleanStale(cmd.Context(), cfg.TempDir(), maxAge, logger)
			fmt.Fprintf(out, "Removed %d temporary files from %s\n", len(result.Removed), cfg.TempDir())
			if len(result.Errors) > 0 {
				for _, failure := range result.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", failure.Path, failure.Error)
				}
				return fmt.Errorf("%d temporary files could not be removed", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Remove every temporary file regardless of age")
	cmd.Flags().BoolVar(&list, "list", false, "List temporary files without removing them")
	return cmd
}
