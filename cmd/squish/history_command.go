package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"squish/internal/history"
	"squish/internal/report"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var fullPaths bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs recorded in the history database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if id := strings.TrimSpace(runID); id != "" {
				reports, err := store.Reports(cmd.Context(), id)
				if err != nil {
					return err
				}
				if len(reports) == 0 {
					return fmt.Errorf("run %s not found", id)
				}
				return report.WriteTable(out, reports, report.Summarize(reports), report.TableOptions{FullPaths: fullPaths})
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.FinishedAt.Sub(run.StartedAt).Round(100 * time.Millisecond).String(),
					fmt.Sprintf("%d", run.Level),
					fmt.Sprintf("%d", run.Summary.Files),
					fmt.Sprintf("%d", run.Summary.Failed),
					humanize.IBytes(uint64(run.Summary.Saved())),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Duration", "Level", "Files", "Failed", "Saved"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			))

			totals, err := store.Totals(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "All runs: %d files, %s saved (%.1f%% smaller)\n",
				totals.Files, humanize.IBytes(uint64(totals.Saved())), 100-totals.Percent())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show the per-file reports of one run")
	cmd.Flags().BoolVar(&fullPaths, "full-paths", false, "Show full paths in the report table")
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 50, "Number of runs to keep")
	return cmd
}
