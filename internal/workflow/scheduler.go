package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"squish/internal/artifact"
	"squish/internal/config"
	"squish/internal/fileutil"
	"squish/internal/logging"
	"squish/internal/notifications"
	"squish/internal/services"
)

// Processor produces one artifact's report.
type Processor interface {
	Process(ctx context.Context, path string) artifact.Report
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, path string) artifact.Report

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, path string) artifact.Report {
	return f(ctx, path)
}

// Scheduler runs jobs under the concurrency cap from config.
type Scheduler struct {
	cfg       *config.Config
	processor Processor
	notifier  notifications.Service
	logger    *slog.Logger
	observer  Observer

	mu sync.Mutex
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithObserver registers a job state observer.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// WithNotifier replaces the notification service.
func WithNotifier(n notifications.Service) Option {
	return func(s *Scheduler) {
		if n != nil {
			s.notifier = n
		}
	}
}

// NewScheduler builds a scheduler around processor.
func NewScheduler(cfg *config.Config, processor Processor, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:       cfg,
		processor: processor,
		notifier:  notifications.NewNoop(),
		logger:    logging.NewComponentLogger(logger, "workflow"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run expands paths, runs one job per file and returns the reports in input
// order. Only a failure to expand the inputs is returned as an error.
func (s *Scheduler) Run(ctx context.Context, paths []string) ([]artifact.Report, error) {
	files, err := Expand(paths)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "workflow", "expand inputs", "", err)
	}

	start := time.Now()
	logger := logging.WithContext(ctx, s.logger)
	jobs := make([]*Job, len(files))
	for i, path := range files {
		jobs[i] = &Job{ID: uuid.NewString(), Index: i, Path: path}
		s.transition(jobs[i], JobQueued)
	}

	limit := max(s.cfg.Optimize.Concurrency, 1)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.Int("jobs", len(jobs)),
		logging.Int("concurrency", limit),
	)
	s.publish(ctx, notifications.EventRunStarted, notifications.Payload{"count": len(jobs)})

	if limit <= 1 {
		for _, job := range jobs {
			s.runJob(ctx, job)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(limit)
		for _, job := range jobs {
			g.Go(func() error {
				s.runJob(ctx, job)
				return nil
			})
		}
		_ = g.Wait()
	}

	reports := make([]artifact.Report, len(jobs))
	for i, job := range jobs {
		reports[i] = job.Report
	}
	s.finish(ctx, logger, reports, time.Since(start))
	return reports, nil
}

func (s *Scheduler) runJob(ctx context.Context, job *Job) {
	if ctx.Err() != nil {
		job.Report = artifact.Skipped(job.Path, "cancelled")
		s.transition(job, JobDone)
		return
	}

	s.transition(job, JobRunning)
	start := time.Now()
	jobCtx := services.WithJobID(ctx, job.ID)
	defer func() {
		if r := recover(); r != nil {
			size, _ := fileutil.Size(job.Path)
			err := fmt.Errorf("job panic: %v", r)
			logging.ErrorWithContext(logging.WithContext(jobCtx, s.logger), "job panicked", "job_panic",
				logging.Error(err),
				logging.String("stack", string(debug.Stack())),
			)
			job.Report = artifact.Failed(job.Path, size, time.Since(start), err)
		}
		s.transition(job, JobDone)
	}()
	job.Report = s.processor.Process(jobCtx, job.Path)
}

func (s *Scheduler) transition(job *Job, state JobState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.State = state
	if s.observer != nil {
		s.observer(*job)
	}
}

func (s *Scheduler) finish(ctx context.Context, logger *slog.Logger, reports []artifact.Report, elapsed time.Duration) {
	var processed, failed int
	var saved int64
	for _, r := range reports {
		switch r.Outcome {
		case artifact.OutcomeCompleted:
			processed++
			saved += r.Saved()
		case artifact.OutcomeFailed:
			failed++
		}
	}
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_completed"),
		logging.Int("processed", processed),
		logging.Int("failed", failed),
		logging.Int64("saved_bytes", saved),
		logging.Duration("elapsed", elapsed),
	)
	s.publish(ctx, notifications.EventRunCompleted, notifications.Payload{
		"processed": processed,
		"failed":    failed,
		"saved":     saved,
		"duration":  elapsed,
	})
}

func (s *Scheduler) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	// Completion notices are sent even after cancellation.
	if err := s.notifier.Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Debug("notification cancelled", logging.String("event", string(event)))
			return
		}
		s.logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}
