// Package logs reads the JSON run log written next to the state directory.
//
// Tail returns the last matching lines with bounded memory and can follow the
// file for new lines. Entries are filtered by run, artifact or minimum level
// and rendered for the terminal by `squish logs`.
package logs
