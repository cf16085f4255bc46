// Package workflow turns command line paths into jobs and runs them.
//
// Directories are expanded into their files before any job exists. Each file
// becomes one Job that moves Queued -> Running -> Done exactly once. The
// Scheduler runs jobs one at a time or, when concurrency is above one, with at
// most that many in flight. Every job writes its report into its own slot, so
// the returned reports follow input order no matter which job finished first.
//
// Cancelling the context stops jobs that have not started (they finish as
// skipped) and kills the external tools of running ones through the stage
// executor.
package workflow
