package pipeline

import (
	"path/filepath"

	"squish/internal/config"
	"squish/internal/textutil"
)

// Masks decides eligibility from the include and exclude filename masks.
type Masks struct {
	include textutil.Mask
	exclude textutil.Mask
}

// NewMasks reads the masks from cfg.
func NewMasks(cfg *config.Config) Masks {
	return Masks{
		include: textutil.NewMask(cfg.IncludeMasks()),
		exclude: textutil.NewMask(cfg.ExcludeMasks()),
	}
}

// Excluded returns a reason when path must be skipped. Both masks are matched
// against the base name and the full path; a matching exclude always wins.
func (m Masks) Excluded(path string) (string, bool) {
	base := filepath.Base(path)
	if pattern, ok := m.exclude.Match(base, path); ok {
		return "excluded by mask " + pattern, true
	}
	if !m.include.Empty() && !m.include.Matches(base, path) {
		return "not matched by include mask", true
	}
	return "", false
}
