package stageexec

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"squish/internal/artifact"
	"squish/internal/config"
	"squish/internal/fileutil"
	"squish/internal/logging"
	"squish/internal/plan"
	"squish/internal/services"
	"squish/internal/textutil"
)

// Executor runs stages. It holds no per-artifact state and is safe for
// concurrent use by many jobs.
type Executor struct {
	cfg      *config.Config
	logger   *slog.Logger
	runner   CommandRunner
	disabled textutil.Mask
}

// Option customizes an Executor.
type Option func(*Executor)

// WithRunner replaces the process runner, mainly for tests.
func WithRunner(r CommandRunner) Option {
	return func(e *Executor) {
		if r != nil {
			e.runner = r
		}
	}
}

// New builds an executor bound to cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "stageexec"),
		disabled: textutil.NewMask(cfg.DisabledPluginMasks()),
	}
	e.runner = ProcessRunner{Priority: cfg.Optimize.ProcessPriority, Capture: cfg.Optimize.Debug, Logger: e.logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type attemptResult struct {
	exitCode   int
	err        error
	timedOut   bool
	cancelled  bool
	size       int64
	resultPath string
}

func (r attemptResult) retryable(spec plan.StageSpec) bool {
	return r.err == nil && !r.timedOut && !r.cancelled && !spec.ExitAcceptable(r.exitCode)
}

// Run executes spec against a. A rejected, failed or skipped stage leaves the
// artifact untouched; only an accepted result rewrites a.Path and lowers
// a.BestKnownSize.
func (e *Executor) Run(ctx context.Context, spec plan.StageSpec, a *artifact.Artifact) (result artifact.StageResult) {
	start := time.Now()
	result = artifact.StageResult{
		Kind:       spec.Kind,
		Stage:      spec.Name,
		ExitCode:   artifact.ExitNotApplicable,
		SizeBefore: a.BestKnownSize,
		SizeAfter:  a.BestKnownSize,
		Status:     artifact.StatusSkipped,
	}
	ctx = services.WithStage(ctx, spec.Label())
	logger := logging.WithContext(ctx, e.logger)
	defer func() {
		result.Duration = time.Since(start)
		logStage(logger, result)
	}()

	size, ok := fileutil.Size(a.Path)
	if !ok {
		result.Reason = "artifact missing"
		return result
	}
	if !spec.Applicable(a, e.cfg) {
		result.Reason = "not applicable"
		return result
	}

	s := newScratch(e.cfg.TempDir(), a.Path, a.Extension())
	defer e.cleanup(s, a, logger)

	if pattern, masked := e.disabled.Match(spec.Template.Signature(s.paths(spec, a.Path, false))); masked {
		result.Reason = fmt.Sprintf("disabled by mask %q", pattern)
		return result
	}
	if size == 0 {
		result.Reason = "empty artifact"
		return result
	}
	if ctx.Err() != nil {
		result.Reason = "cancelled"
		return result
	}

	att := e.attempt(ctx, spec, a, s, false, logger)
	result.Attempts = 1
	if att.retryable(spec) {
		logger.Debug("stage exit code unacceptable, retrying with extension-qualified copy",
			logging.Int("exit_code", att.exitCode),
			logging.String("extension", s.ext),
		)
		att = e.attempt(ctx, spec, a, s, true, logger)
		result.Attempts = 2
	}
	result.ExitCode = att.exitCode

	switch {
	case att.cancelled:
		result.Reason = "cancelled"
	case att.timedOut:
		result.Status = artifact.StatusTimedOut
		result.Reason = fmt.Sprintf("exceeded %s", e.cfg.StageTimeout())
	case att.err != nil:
		result.Status = artifact.StatusStageFailed
		result.Reason = att.err.Error()
	case !spec.ExitAcceptable(att.exitCode):
		result.Status = artifact.StatusStageFailed
		result.Reason = fmt.Sprintf("exit code %d", att.exitCode)
	case att.size < artifact.MinSize || att.size >= a.BestKnownSize:
		result.Status = artifact.StatusSizeRejected
		result.Reason = fmt.Sprintf("output %d bytes", att.size)
	default:
		if err := fileutil.OverwriteFile(att.resultPath, a.Path); err != nil {
			result.Status = artifact.StatusStageFailed
			result.Reason = services.Wrap(services.ErrExternalTool, "stageexec", "write back", a.Path, err).Error()
			return result
		}
		a.Accept(att.size)
		result.Status = artifact.StatusAccepted
		result.Accepted = true
		result.SizeAfter = att.size
	}
	return result
}

func (e *Executor) attempt(ctx context.Context, spec plan.StageSpec, a *artifact.Artifact, s *scratch, qualified bool, logger *slog.Logger) attemptResult {
	p := s.paths(spec, a.Path, qualified)
	if err := s.clearOutputs(p); err != nil {
		return attemptResult{exitCode: artifact.ExitNotApplicable, err: fmt.Errorf("clear stage output: %w", err)}
	}
	if spec.InPlace() || spec.Template.Uses(plan.SlotTmpInput) {
		if err := fileutil.CopyFile(a.Path, p.TmpInput); err != nil {
			return attemptResult{exitCode: artifact.ExitNotApplicable, err: fmt.Errorf("stage working copy: %w", err)}
		}
	}

	runCtx := ctx
	if timeout := e.cfg.StageTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	argv := spec.Template.Render(p)
	logger.Debug("stage invoking", logging.String("command", strings.Join(argv, " ")), logging.Bool("qualified", qualified))
	completion, err := e.runner.Run(runCtx, argv)
	if out := strings.TrimSpace(string(completion.Output)); out != "" {
		logger.Debug("stage output", logging.String("output", out))
	}

	res := attemptResult{exitCode: completion.ExitCode}
	if err != nil {
		switch {
		case ctx.Err() != nil:
			res.cancelled = true
		case runCtx.Err() != nil:
			res.timedOut = true
		default:
			res.exitCode = artifact.ExitNotApplicable
			res.err = fmt.Errorf("start %s: %w", spec.Template.Program(), err)
		}
		return res
	}
	res.resultPath, res.size = s.extract(spec, p)
	return res
}

func (e *Executor) cleanup(s *scratch, a *artifact.Artifact, logger *slog.Logger) {
	if a.DebugKeepTemps {
		logger.Debug("keeping stage temp files", logging.String("tmp_input", s.in), logging.String("tmp_output", s.out))
		return
	}
	if err := s.remove(); err != nil {
		logging.WarnWithContext(logger, "stage temp cleanup failed", "temp_cleanup_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove squish_* files from the temp directory"),
			logging.String(logging.FieldImpact, "temp directory keeps stale scratch files"),
		)
	}
}

func logStage(logger *slog.Logger, result artifact.StageResult) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "stage_"+string(result.Status)),
		logging.Int("exit_code", result.ExitCode),
		logging.Int64("size_before", result.SizeBefore),
		logging.Int64("size_after", result.SizeAfter),
		logging.Int("attempts", result.Attempts),
		logging.Duration("duration", result.Duration),
	}
	if result.Reason != "" {
		attrs = append(attrs, logging.String("reason", result.Reason))
	}
	if result.Status == artifact.StatusSkipped {
		logger.Debug("stage skipped", logging.Args(attrs...)...)
		return
	}
	logger.Info("stage finished", logging.Args(attrs...)...)
}
