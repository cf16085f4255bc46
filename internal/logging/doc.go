// Package logging assembles the slog loggers used by squish.
//
// Console output is a compact key=value line meant for terminals, JSON output
// is meant for collectors. NewFromConfig additionally mirrors every record as
// JSON into the configured log directory so a run can be inspected after the
// terminal scrolls away. Context helpers tag lines with the run, job, stage
// and artifact carried on the context.
package logging
