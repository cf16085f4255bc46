package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// Mask is a set of substring patterns matched without regard to case. It is
// immutable and safe to share; a Caser is built per call since casers carry
// state.
type Mask struct {
	patterns []string
}

// NewMask folds and stores the non-empty patterns.
func NewMask(patterns []string) Mask {
	folder := cases.Fold()
	var m Mask
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		m.patterns = append(m.patterns, folder.String(p))
	}
	return m
}

// Empty reports whether the mask has no patterns.
func (m Mask) Empty() bool {
	return len(m.patterns) == 0
}

// Match returns the first pattern contained in any candidate.
func (m Mask) Match(candidates ...string) (string, bool) {
	if m.Empty() {
		return "", false
	}
	folder := cases.Fold()
	for _, candidate := range candidates {
		folded := folder.String(candidate)
		for _, p := range m.patterns {
			if strings.Contains(folded, p) {
				return p, true
			}
		}
	}
	return "", false
}

// Matches reports whether any pattern is contained in any candidate.
func (m Mask) Matches(candidates ...string) bool {
	_, ok := m.Match(candidates...)
	return ok
}
