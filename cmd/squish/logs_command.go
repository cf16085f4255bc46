package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"squish/internal/logging"
	"squish/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var raw bool
	var filter logs.Filter

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			out := cmd.OutOrStdout()
			emit := func(batch []string) {
				for _, line := range batch {
					if raw {
						fmt.Fprintln(out, line)
						continue
					}
					fmt.Fprintln(out, logs.ParseEntry(line).Format())
				}
			}

			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines, Filter: filter})
			if err != nil {
				return err
			}
			emit(result.Lines)
			if !follow {
				return nil
			}

			for {
				result, err = logs.Tail(cmd.Context(), path, logs.TailOptions{
					Offset: result.Offset,
					Follow: true,
					Wait:   time.Minute,
					Filter: filter,
				})
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				emit(result.Lines)
			}
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON lines unchanged")
	cmd.Flags().StringVar(&filter.RunID, "run", "", "Only lines of this run")
	cmd.Flags().StringVar(&filter.Artifact, "file", "", "Only lines whose artifact path contains this text")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "Minimum level: debug, info, warn, error")
	return cmd
}
