package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"squish/internal/artifact"
	"squish/internal/config"
	"squish/internal/history"
	"squish/internal/logging"
	"squish/internal/notifications"
	"squish/internal/pipeline"
	"squish/internal/plan"
	"squish/internal/preflight"
	"squish/internal/report"
	"squish/internal/safety"
	"squish/internal/services"
	"squish/internal/stageexec"
	"squish/internal/staging"
	"squish/internal/workflow"
)

type runOptions struct {
	level        int
	concurrency  int
	debug        bool
	allowLossy   bool
	include      string
	exclude      string
	disable      string
	jsonOutput   bool
	markdownPath string
	fullPaths    bool
	quiet        bool
	noHistory    bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <path>...",
		Short: "Optimize files and directories in place",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return executeRun(cmd, cfg, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.level, "level", "l", 0, "Optimization level 1-9")
	flags.IntVarP(&opts.concurrency, "concurrency", "j", 0, "Files processed at once")
	flags.BoolVar(&opts.debug, "debug", false, "Keep temporary working copies")
	flags.BoolVar(&opts.allowLossy, "allow-lossy", false, "Enable stages that discard information")
	flags.StringVar(&opts.include, "include", "", "Semicolon separated include mask")
	flags.StringVar(&opts.exclude, "exclude", "", "Semicolon separated exclude mask")
	flags.StringVar(&opts.disable, "disable", "", "Semicolon separated mask of tool command lines to skip")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print reports as JSON")
	flags.StringVar(&opts.markdownPath, "markdown", "", "Also write a markdown report to this file")
	flags.BoolVar(&opts.fullPaths, "full-paths", false, "Show full paths in the report table")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print per-file progress")
	flags.BoolVar(&opts.noHistory, "no-history", false, "Do not record this run in the history database")

	ctx.addOverride(func(cfg *config.Config) {
		if flags.Changed("level") {
			cfg.Optimize.Level = opts.level
		}
		if flags.Changed("concurrency") {
			cfg.Optimize.Concurrency = opts.concurrency
		}
		if flags.Changed("debug") {
			cfg.Optimize.Debug = opts.debug
		}
		if flags.Changed("allow-lossy") {
			cfg.Optimize.AllowLossy = opts.allowLossy
		}
		if flags.Changed("include") {
			cfg.Filters.IncludeMask = opts.include
		}
		if flags.Changed("exclude") {
			cfg.Filters.ExcludeMask = opts.exclude
		}
		if flags.Changed("disable") {
			cfg.Filters.DisabledPluginMask = opts.disable
		}
		if opts.noHistory {
			cfg.History.Enabled = false
		}
	})

	return cmd
}

func executeRun(cmd *cobra.Command, cfg *config.Config, opts *runOptions, args []string) error {
	logger, closeLog, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	results := preflight.RunAll(cfg)
	for _, result := range results {
		if !result.Passed && !result.Fatal {
			logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
				logging.String(logging.FieldErrorHint, "fix the directory permissions or change the path in the config"),
				logging.String(logging.FieldImpact, "features using this directory may fail"),
			)
		}
	}
	if err := preflight.FirstFatal(results); err != nil {
		return err
	}

	signalCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	runCtx := services.WithRunID(signalCtx, runID)

	staging.CleanStale(runCtx, cfg.TempDir(), staging.StaleAfter, logger)

	stagePlan, err := plan.Build(cfg)
	if err != nil {
		return err
	}

	executor := stageexec.New(cfg, logger)
	runner := pipeline.New(cfg, stagePlan, executor, logger)
	wrapper := safety.New(cfg, runner, logger)

	progress := cmd.ErrOrStderr()
	schedOpts := []workflow.Option{workflow.WithNotifier(notifications.NewService(cfg))}
	if !opts.quiet {
		schedOpts = append(schedOpts, workflow.WithObserver(progressObserver(progress)))
	}
	scheduler := workflow.NewScheduler(cfg, wrapper, logger, schedOpts...)

	started := time.Now()
	reports, err := scheduler.Run(runCtx, args)
	if err != nil {
		return err
	}
	finished := time.Now()

	collector := report.NewCollector()
	collector.Add(reports...)
	collector.SetElapsed(finished.Sub(started))
	summary := collector.Summary()

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		err = report.WriteJSON(out, reports, summary)
	} else {
		err = report.WriteTable(out, reports, summary, report.TableOptions{FullPaths: opts.fullPaths})
	}
	if err != nil {
		return err
	}

	if path := strings.TrimSpace(opts.markdownPath); path != "" {
		if err := writeMarkdownReport(path, reports, summary, finished); err != nil {
			return err
		}
	}

	if cfg.History.Enabled {
		recordHistory(context.WithoutCancel(runCtx), cfg, logging.WithContext(runCtx, logger), history.Run{
			ID:          runID,
			StartedAt:   started,
			FinishedAt:  finished,
			Level:       cfg.Optimize.Level,
			Concurrency: cfg.Optimize.Concurrency,
		}, reports)
	}

	if err := signalCtx.Err(); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Files)
	}
	return nil
}

func progressObserver(w io.Writer) workflow.Observer {
	return func(job workflow.Job) {
		if job.State != workflow.JobDone {
			return
		}
		status := job.Report.Status
		if job.Report.Detail != "" && job.Report.Outcome != artifact.OutcomeCompleted {
			status = fmt.Sprintf("%s (%s)", status, job.Report.Detail)
		}
		fmt.Fprintf(w, "%s: %s\n", job.Path, status)
	}
}

func writeMarkdownReport(path string, reports []artifact.Report, summary report.Summary, generated time.Time) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create markdown report: %w", err)
	}
	if err := report.WriteMarkdown(file, reports, summary, generated); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func recordHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger, run history.Run, reports []artifact.Report) {
	store, err := history.Open(cfg)
	if err == nil {
		defer store.Close()
		err = store.Record(ctx, run, reports)
	}
	if err == nil {
		return
	}
	hint := "check permissions of the state directory"
	if errors.Is(err, history.ErrSchemaMismatch) {
		hint = "move the history database aside; a new one is created on the next run"
	}
	logging.WarnWithContext(logger, "run not recorded in history", "history_record_failed",
		logging.Error(err),
		logging.String("path", cfg.HistoryPath()),
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, "run missing from squish history"),
	)
}
