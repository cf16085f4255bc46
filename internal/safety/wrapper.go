package safety

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"squish/internal/artifact"
	"squish/internal/config"
	"squish/internal/fileutil"
	"squish/internal/logging"
	"squish/internal/services"
)

// BackupSuffix is appended to the artifact path for backup_copy.
const BackupSuffix = ".bak"

// Processor is the per-artifact pipeline being protected.
type Processor interface {
	Eligible(path string) (bool, string)
	Run(ctx context.Context, path string) artifact.Report
}

// Wrapper applies the configured safety measures around a Processor.
type Wrapper struct {
	cfg    *config.Config
	inner  Processor
	trash  *Trash
	logger *slog.Logger
}

// New wraps inner using the [safety] settings of cfg.
func New(cfg *config.Config, inner Processor, logger *slog.Logger) *Wrapper {
	return &Wrapper{
		cfg:    cfg,
		inner:  inner,
		trash:  NewTrash(cfg.Safety.TrashDir),
		logger: logging.NewComponentLogger(logger, "safety"),
	}
}

// Process runs the wrapped pipeline for path. It never panics and never
// returns an error; every problem ends up in the report.
func (w *Wrapper) Process(ctx context.Context, path string) (report artifact.Report) {
	start := time.Now()
	ctx = services.WithArtifact(ctx, path)
	logger := logging.WithContext(ctx, w.logger)

	defer func() {
		if r := recover(); r != nil {
			size, _ := fileutil.Size(path)
			err := fmt.Errorf("job panic: %v", r)
			logging.ErrorWithContext(logger, "artifact job panicked", "job_panic",
				logging.Error(err),
				logging.String("stack", string(debug.Stack())),
			)
			report = artifact.Failed(path, size, time.Since(start), err)
		}
	}()

	if ok, reason := w.inner.Eligible(path); !ok {
		return artifact.Skipped(path, reason)
	}

	lock, err := tryLock(w.cfg.LocksDir(), path)
	if err != nil {
		return w.fail(logger, path, start, "lock", err)
	}
	if lock == nil {
		logger.Info("artifact locked by another process", logging.String(logging.FieldEventType, "artifact_busy"))
		return artifact.Skipped(path, "in use")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Debug("release artifact lock failed", logging.Error(err))
		}
	}()

	var attrs *attributes
	if w.cfg.Safety.KeepAttributes {
		snap, err := snapshot(path)
		if err != nil {
			return w.fail(logger, path, start, "snapshot attributes", err)
		}
		attrs = &snap
	}

	if w.cfg.Safety.TrashCopy {
		dest, err := w.trash.Put(path)
		if err != nil {
			return w.fail(logger, path, start, "trash copy", err)
		}
		logger.Debug("trash copy written", logging.String("copy", dest))
	}
	if w.cfg.Safety.BackupCopy {
		if err := fileutil.CopyFileVerified(path, path+BackupSuffix); err != nil {
			return w.fail(logger, path, start, "backup copy", err)
		}
	}

	report = w.inner.Run(ctx, path)

	if attrs != nil && report.Outcome == artifact.OutcomeCompleted {
		if err := attrs.restore(path); err != nil {
			logging.WarnWithContext(logger, "restore attributes failed", "attributes_not_restored",
				logging.Error(err),
				logging.String(logging.FieldImpact, "optimized file keeps new mode or timestamps"),
			)
		}
	}
	return report
}

func (w *Wrapper) fail(logger *slog.Logger, path string, start time.Time, op string, err error) artifact.Report {
	size, _ := fileutil.Size(path)
	wrapped := services.Wrap(services.ErrTransient, "safety", op, path, err)
	logging.WarnWithContext(logger, "safety step failed", "safety_failed", logging.Error(wrapped))
	return artifact.Failed(path, size, time.Since(start), wrapped)
}
