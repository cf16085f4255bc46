// Package plan builds the static table that maps each content kind to its
// ordered list of optimization stages.
//
// The table is computed once from configuration and shared read-only by every
// job. Stage commands are typed argument templates; placeholders are resolved
// per invocation without ever involving a shell.
package plan
