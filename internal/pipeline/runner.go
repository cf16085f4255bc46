package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"squish/internal/artifact"
	"squish/internal/classify"
	"squish/internal/config"
	"squish/internal/logging"
	"squish/internal/plan"
	"squish/internal/services"
)

// StageRunner executes one stage against an artifact.
type StageRunner interface {
	Run(ctx context.Context, spec plan.StageSpec, a *artifact.Artifact) artifact.StageResult
}

// Runner is the per-artifact pipeline. It is stateless between calls and may
// be shared by concurrent jobs.
type Runner struct {
	cfg        *config.Config
	plan       *plan.Plan
	stages     StageRunner
	classifier *classify.Classifier
	masks      Masks
	logger     *slog.Logger
}

// Option customizes a Runner.
type Option func(*Runner)

// WithClassifier replaces the default classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(r *Runner) {
		if c != nil {
			r.classifier = c
		}
	}
}

// New builds a runner over a prepared plan and stage runner.
func New(cfg *config.Config, p *plan.Plan, stages StageRunner, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:        cfg,
		plan:       p,
		stages:     stages,
		classifier: classify.New(),
		masks:      NewMasks(cfg),
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Eligible reports whether path would be processed, with a reason when not.
// It never reads file contents.
func (r *Runner) Eligible(path string) (bool, string) {
	if reason, excluded := r.masks.Excluded(path); excluded {
		return false, reason
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, "missing"
	}
	if !info.Mode().IsRegular() {
		return false, "not a regular file"
	}
	return true, ""
}

// Classify returns the classifier tags for path.
func (r *Runner) Classify(path string) ([]classify.Kind, error) {
	head, err := readHead(path)
	if err != nil {
		return nil, err
	}
	return r.classifier.Classify(head, path), nil
}

// Run optimizes one artifact. Every failure is folded into the report.
func (r *Runner) Run(ctx context.Context, path string) artifact.Report {
	start := time.Now()
	ctx = services.WithArtifact(ctx, path)
	logger := logging.WithContext(ctx, r.logger)

	if ok, reason := r.Eligible(path); !ok {
		logger.Debug("artifact skipped", logging.String("reason", reason))
		return artifact.Skipped(path, reason)
	}

	info, err := os.Stat(path)
	if err != nil {
		return artifact.Skipped(path, "missing")
	}
	tags, err := r.Classify(path)
	if err != nil {
		wrapped := services.Wrap(services.ErrValidation, "pipeline", "read head", path, err)
		logging.WarnWithContext(logger, "artifact unreadable", "artifact_unreadable", logging.Error(wrapped))
		return artifact.Failed(path, info.Size(), time.Since(start), wrapped)
	}

	kinds := r.plan.Resolve(tags)
	if len(kinds) == 0 {
		report := artifact.Skipped(path, fmt.Sprintf("no stages for %s", classify.Describe(tags)))
		report.Kind = string(tags[0])
		report.OriginalSize = info.Size()
		report.OptimizedSize = info.Size()
		logger.Debug("artifact skipped", logging.String("reason", report.Detail))
		return report
	}

	a := artifact.New(path, info.Size(), tags, r.cfg.Optimize.Debug)
	logger.Debug("artifact classified",
		logging.String("tags", classify.Describe(tags)),
		logging.String("kinds", classify.Describe(kinds)),
		logging.Int64("size", a.OriginalSize),
	)

	var results []artifact.StageResult
	for _, kind := range kinds {
		a.Kind = kind
		for _, spec := range r.plan.Stages(kind) {
			results = append(results, r.stages.Run(ctx, spec, a))
		}
	}

	return r.fold(a, kinds[0], results, time.Since(start), logger)
}

func (r *Runner) fold(a *artifact.Artifact, kind classify.Kind, results []artifact.StageResult, elapsed time.Duration, logger *slog.Logger) artifact.Report {
	optimized := a.BestKnownSize
	if !a.Improved() {
		optimized = a.OriginalSize
	}
	percent := artifact.Percent(a.OriginalSize, optimized)
	report := artifact.Report{
		InputFile:     a.Path,
		Kind:          string(kind),
		OriginalSize:  a.OriginalSize,
		OptimizedSize: optimized,
		Status:        artifact.CompletedStatus(percent, elapsed),
		Percent:       percent,
		Elapsed:       elapsed,
		Stages:        results,
		Outcome:       artifact.OutcomeCompleted,
	}
	logger.Info("artifact optimized",
		logging.String(logging.FieldEventType, "artifact_done"),
		logging.String("kind", report.Kind),
		logging.Int64("original_size", report.OriginalSize),
		logging.Int64("optimized_size", report.OptimizedSize),
		logging.Int("stages", len(results)),
		logging.Duration("elapsed", elapsed),
	)
	return report
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, classify.HeadSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}
