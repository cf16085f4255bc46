package artifact

import (
	"fmt"
	"time"
)

// Outcome buckets a report for summaries and history.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// SkippedStatus is the report status of an artifact that was never processed.
const SkippedStatus = "Skipped"

// Report is produced once per artifact and is immutable afterwards.
type Report struct {
	InputFile     string
	Kind          string
	OriginalSize  int64
	OptimizedSize int64
	Status        string
	Percent       float64
	Elapsed       time.Duration
	Stages        []StageResult
	Outcome       Outcome
	Detail        string
}

// ElapsedSeconds is the wall time of the artifact's pipeline in seconds.
func (r Report) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// Saved is the number of bytes removed from the artifact.
func (r Report) Saved() int64 {
	if r.OptimizedSize >= r.OriginalSize {
		return 0
	}
	return r.OriginalSize - r.OptimizedSize
}

// Skipped builds the report of an artifact that was not processed; reason
// lands in Detail.
func Skipped(path, reason string) Report {
	return Report{InputFile: path, Status: SkippedStatus, Outcome: OutcomeSkipped, Percent: 100, Detail: reason}
}

// Failed builds the degraded report of an artifact whose job faulted. Sizes
// are left equal so totals never count a failed artifact as saved.
func Failed(path string, size int64, elapsed time.Duration, err error) Report {
	msg := "unknown failure"
	if err != nil {
		msg = err.Error()
	}
	return Report{
		InputFile:     path,
		OriginalSize:  size,
		OptimizedSize: size,
		Status:        "Failed",
		Percent:       100,
		Elapsed:       elapsed,
		Outcome:       OutcomeFailed,
		Detail:        msg,
	}
}

// CompletedStatus renders the human readable summary of a finished pipeline.
func CompletedStatus(percent float64, elapsed time.Duration) string {
	return fmt.Sprintf("Done (%.2f%%) in %.3fs", percent, elapsed.Seconds())
}

// Percent returns optimized as a percentage of original. A zero original is
// reported as 100%.
func Percent(original, optimized int64) float64 {
	if original <= 0 {
		return 100
	}
	return float64(optimized) / float64(original) * 100
}
