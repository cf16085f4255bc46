// Package safety wraps one artifact's pipeline run with the protections a
// user can ask for: an exclusive per-file lock, a copy in the desktop trash,
// a verified .bak sibling, and restoration of file attributes. It also turns a
// panic inside the run into a failed report so one bad file cannot take the
// whole batch down.
package safety
