package plan

import (
	"fmt"
	"slices"

	"squish/internal/artifact"
	"squish/internal/classify"
	"squish/internal/config"
)

// Predicate gates a stage on the artifact at hand.
type Predicate func(a *artifact.Artifact, cfg *config.Config) bool

// StageSpec is one external tool invocation step. It is immutable once the
// plan is built.
type StageSpec struct {
	Kind      classify.Kind
	Name      string
	Template  Template
	ExitMin   int
	ExitMax   int
	ExitCodes []int
	Applies   Predicate
	Custom    bool
}

// Label identifies the stage in logs and reports.
func (s StageSpec) Label() string {
	return fmt.Sprintf("%s/%s", s.Kind, s.Name)
}

// ExitAcceptable reports whether code lies in the closed range or the extra
// code set.
func (s StageSpec) ExitAcceptable(code int) bool {
	if code >= s.ExitMin && code <= s.ExitMax {
		return true
	}
	return slices.Contains(s.ExitCodes, code)
}

// UsesExplicitOutput reports whether the template names %OUTPUTFILE%.
func (s StageSpec) UsesExplicitOutput() bool {
	return s.Template.Uses(SlotOutput)
}

// UsesTempOutput reports whether the template names %TMPOUTPUTFILE%.
func (s StageSpec) UsesTempOutput() bool {
	return s.Template.Uses(SlotTmpOutput)
}

// InPlace reports whether the tool is expected to rewrite its input.
func (s StageSpec) InPlace() bool {
	return !s.UsesExplicitOutput() && !s.UsesTempOutput()
}

// Applicable evaluates the stage predicate; stages without one always apply.
func (s StageSpec) Applicable(a *artifact.Artifact, cfg *config.Config) bool {
	if s.Applies == nil {
		return true
	}
	return s.Applies(a, cfg)
}

// ExitDescription renders the accepted exit codes for display.
func (s StageSpec) ExitDescription() string {
	desc := fmt.Sprintf("%d", s.ExitMin)
	if s.ExitMax != s.ExitMin {
		desc = fmt.Sprintf("%d-%d", s.ExitMin, s.ExitMax)
	}
	for _, code := range s.ExitCodes {
		desc += fmt.Sprintf(",%d", code)
	}
	return desc
}

// All combines predicates; every one must hold.
func All(preds ...Predicate) Predicate {
	return func(a *artifact.Artifact, cfg *config.Config) bool {
		for _, p := range preds {
			if p != nil && !p(a, cfg) {
				return false
			}
		}
		return true
	}
}

// NotAnimated holds when the artifact is not an animated variant of kind.
func NotAnimated(kind classify.Kind) Predicate {
	return func(a *artifact.Artifact, _ *config.Config) bool {
		return !classify.IsAnimated(a.Path, kind)
	}
}

// NotSelfExtracting holds unless the executable carries an archive payload.
func NotSelfExtracting(a *artifact.Artifact, _ *config.Config) bool {
	return !classify.IsSelfExtracting(a.Path)
}

// LossyAllowed holds when lossy transforms are enabled.
func LossyAllowed(_ *artifact.Artifact, cfg *config.Config) bool {
	return cfg != nil && cfg.Optimize.AllowLossy
}

// UPXEnabled holds when executable packing is enabled.
func UPXEnabled(_ *artifact.Artifact, cfg *config.Config) bool {
	return cfg != nil && cfg.Tuning.ExeUPX
}

// StripEXIF holds when metadata for kind may be dropped and the artifact
// actually carries EXIF data.
func StripEXIF(kind classify.Kind) Predicate {
	return func(a *artifact.Artifact, cfg *config.Config) bool {
		if cfg != nil && cfg.PreserveMetadata(string(kind)) {
			return false
		}
		return classify.HasEXIF(a.Path)
	}
}
