// Package artifact holds the values that flow through an optimization run:
// the file being optimized, per-stage results, and the final report.
package artifact

import (
	"squish/internal/classify"
)

const (
	// MinSize is the sanity floor below which a stage result is discarded.
	MinSize int64 = 8
	// ExitNotApplicable is recorded when a stage never spawned a process
	// because there was nothing to run it on.
	ExitNotApplicable = -1
)

// Artifact is the file being optimized.
//
// BestKnownSize only decreases, and only when a stage result is accepted.
// Kind is the kind whose stage list is currently running; the executor uses
// it to pick the extension for its retry working copy.
type Artifact struct {
	Path           string
	OriginalSize   int64
	BestKnownSize  int64
	Kinds          []classify.Kind
	Kind           classify.Kind
	DebugKeepTemps bool
}

// New returns an artifact whose best-known size starts at its original size.
func New(path string, size int64, kinds []classify.Kind, debug bool) *Artifact {
	return &Artifact{
		Path:           path,
		OriginalSize:   size,
		BestKnownSize:  size,
		Kinds:          append([]classify.Kind(nil), kinds...),
		DebugKeepTemps: debug,
	}
}

// Accept records a new best size. Sizes that would not shrink the artifact or
// fall under MinSize are ignored and false is returned.
func (a *Artifact) Accept(size int64) bool {
	if size < MinSize || size >= a.BestKnownSize {
		return false
	}
	a.BestKnownSize = size
	return true
}

// Improved reports whether any stage produced an accepted result.
func (a *Artifact) Improved() bool {
	return a.BestKnownSize < a.OriginalSize && a.BestKnownSize >= MinSize
}

// HasKind reports whether the classifier assigned kind to the artifact.
func (a *Artifact) HasKind(kind classify.Kind) bool {
	for _, k := range a.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Extension is the canonical extension of the active kind.
func (a *Artifact) Extension() string {
	return classify.Extension(a.Kind)
}
