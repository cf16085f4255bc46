// Package pipeline runs every applicable stage against one artifact and folds
// the stage results into its report.
//
// A file is first checked against the include and exclude masks; excluded or
// missing files are reported as skipped without being read. Otherwise the
// head of the file is classified, the tags are resolved against the plan, and
// the stage list of every matched kind runs in plan order.
package pipeline
