package stageexec

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"regexp"

	"squish/internal/fileutil"
	"squish/internal/plan"
)

// TempPrefix starts the name of every scratch file the executor creates.
const TempPrefix = "squish_"

var tempNamePattern = regexp.MustCompile(`^squish_\d{9}_`)

// IsTempName reports whether name looks like a stage scratch file.
func IsTempName(name string) bool {
	return tempNamePattern.MatchString(name)
}

func tempName(base string) string {
	return fmt.Sprintf("%s%09d_%s", TempPrefix, rand.IntN(1_000_000_000), base)
}

// scratch owns the temp paths of one stage invocation and remembers every
// variant it handed out so cleanup can remove them all.
type scratch struct {
	in      string
	out     string
	ext     string
	tracked []string
	seen    map[string]struct{}
}

func newScratch(dir, artifactPath, ext string) *scratch {
	base := filepath.Base(artifactPath)
	in := filepath.Join(dir, tempName(base))
	out := filepath.Join(dir, tempName(base))
	for out == in {
		out = filepath.Join(dir, tempName(base))
	}
	return &scratch{in: in, out: out, ext: ext, seen: make(map[string]struct{})}
}

// paths binds the template slots. Qualified paths carry the kind extension.
// In-place templates get the working copy for %INPUTFILE% as well so the
// tool never touches the artifact itself.
func (s *scratch) paths(spec plan.StageSpec, artifactPath string, qualified bool) plan.Paths {
	suffix := ""
	if qualified {
		suffix = s.ext
	}
	p := plan.Paths{
		Input:     artifactPath,
		TmpInput:  s.in + suffix,
		TmpOutput: s.out + suffix,
		Output:    s.out + s.ext,
	}
	if spec.InPlace() {
		p.Input = p.TmpInput
	}
	s.track(p.TmpInput, p.TmpOutput, p.TmpOutput+s.ext, p.Output)
	return p
}

func (s *scratch) track(paths ...string) {
	for _, path := range paths {
		if _, ok := s.seen[path]; ok {
			continue
		}
		s.seen[path] = struct{}{}
		s.tracked = append(s.tracked, path)
	}
}

// extract locates the stage result and its size. A missing file has size 0.
func (s *scratch) extract(spec plan.StageSpec, p plan.Paths) (string, int64) {
	switch {
	case spec.UsesExplicitOutput():
		size, _ := fileutil.Size(p.Output)
		return p.Output, size
	case spec.UsesTempOutput():
		for _, candidate := range []string{p.TmpOutput, p.TmpOutput + s.ext} {
			if size, ok := fileutil.Size(candidate); ok {
				return candidate, size
			}
		}
		return p.TmpOutput, 0
	default:
		size, _ := fileutil.Size(p.TmpInput)
		return p.TmpInput, size
	}
}

// clearOutputs removes every file extract could pick up for p, so an attempt
// is only ever judged by what it wrote itself.
func (s *scratch) clearOutputs(p plan.Paths) error {
	return fileutil.RemoveAll(p.Output, p.TmpOutput, p.TmpOutput+s.ext)
}

func (s *scratch) remove() error {
	return fileutil.RemoveAll(s.tracked...)
}
