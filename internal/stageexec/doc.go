// Package stageexec runs a single optimization stage against one artifact.
//
// Each invocation works on private temp copies named after a random numeric
// prefix and the artifact base name, so concurrent jobs never share a path.
// An unacceptable exit code is retried exactly once with working copies that
// carry the kind's canonical extension. A result replaces the artifact only
// when the tool succeeded and the output is at least artifact.MinSize bytes
// and smaller than the best size seen so far.
package stageexec
