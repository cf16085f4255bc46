// Package report aggregates artifact reports and renders them.
//
// The Collector keeps reports in the order they were added and derives the
// run Summary. Writers render the same data as a terminal table, JSON for
// scripts, or Markdown for sharing.
package report
