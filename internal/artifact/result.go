package artifact

import (
	"time"

	"squish/internal/classify"
)

// StageStatus is the terminal state of one stage invocation.
type StageStatus string

const (
	StatusAccepted     StageStatus = "accepted"
	StatusSizeRejected StageStatus = "size_rejected"
	StatusStageFailed  StageStatus = "stage_failed"
	StatusSkipped      StageStatus = "skipped"
	StatusTimedOut     StageStatus = "timed_out"
)

// StageResult is created fresh per stage invocation and never mutated after
// the executor returns it.
type StageResult struct {
	Kind       classify.Kind `json:"kind"`
	Stage      string        `json:"stage"`
	ExitCode   int           `json:"exit_code"`
	SizeBefore int64         `json:"size_before"`
	SizeAfter  int64         `json:"size_after"`
	Accepted   bool          `json:"accepted"`
	Status     StageStatus   `json:"status"`
	Attempts   int           `json:"attempts"`
	Duration   time.Duration `json:"duration_ns"`
	Reason     string        `json:"reason,omitempty"`
}

// DurationMs is the wall time of the stage in milliseconds.
func (r StageResult) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
