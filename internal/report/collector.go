package report

import (
	"sync"
	"time"

	"squish/internal/artifact"
)

// Collector accumulates reports. It is safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	reports []artifact.Report
	elapsed time.Duration
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends reports.
func (c *Collector) Add(reports ...artifact.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, reports...)
}

// SetElapsed records the wall time of the whole run.
func (c *Collector) SetElapsed(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elapsed = d
}

// Reports returns a copy of the collected reports.
func (c *Collector) Reports() []artifact.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]artifact.Report(nil), c.reports...)
}

// Summary totals the collected reports.
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Summarize(c.reports)
	s.Elapsed = c.elapsed
	return s
}

// Summary is the aggregate of one run.
type Summary struct {
	Files          int
	Completed      int
	Improved       int
	Skipped        int
	Failed         int
	OriginalBytes  int64
	OptimizedBytes int64
	Elapsed        time.Duration
}

// Summarize totals reports. Skipped artifacts do not count towards the byte
// totals.
func Summarize(reports []artifact.Report) Summary {
	var s Summary
	for _, r := range reports {
		s.Files++
		switch r.Outcome {
		case artifact.OutcomeCompleted:
			s.Completed++
			if r.OptimizedSize < r.OriginalSize {
				s.Improved++
			}
			s.OriginalBytes += r.OriginalSize
			s.OptimizedBytes += r.OptimizedSize
		case artifact.OutcomeFailed:
			s.Failed++
		default:
			s.Skipped++
		}
	}
	return s
}

// Saved is the number of bytes removed across the run.
func (s Summary) Saved() int64 {
	if s.OptimizedBytes >= s.OriginalBytes {
		return 0
	}
	return s.OriginalBytes - s.OptimizedBytes
}

// Percent is the optimized total as a percentage of the original total.
func (s Summary) Percent() float64 {
	return artifact.Percent(s.OriginalBytes, s.OptimizedBytes)
}
