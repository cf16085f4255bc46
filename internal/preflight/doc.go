// Package preflight checks the directories squish writes to before any job
// starts.
//
// An unusable temp directory aborts the run; every stage needs it. Problems
// with the state, log or trash directories are reported but only disable the
// features that use them.
package preflight
