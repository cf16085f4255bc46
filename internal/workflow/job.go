package workflow

import (
	"squish/internal/artifact"
)

// JobState is the lifecycle position of a job.
type JobState string

const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
)

// Job is one artifact's unit of work. Report is set once the job is done.
type Job struct {
	ID     string
	Index  int
	Path   string
	State  JobState
	Report artifact.Report
}

// Observer receives a copy of a job on every state transition. Calls are
// serialized.
type Observer func(Job)
