package plan

import (
	"errors"
	"strings"
)

// Slot is a placeholder filled with a concrete path when a stage runs.
type Slot int

const (
	SlotNone Slot = iota
	SlotInput
	SlotOutput
	SlotTmpInput
	SlotTmpOutput
)

const (
	PlaceholderInput     = "%INPUTFILE%"
	PlaceholderOutput    = "%OUTPUTFILE%"
	PlaceholderTmpInput  = "%TMPINPUTFILE%"
	PlaceholderTmpOutput = "%TMPOUTPUTFILE%"
)

var placeholders = []struct {
	token string
	slot  Slot
}{
	{PlaceholderInput, SlotInput},
	{PlaceholderOutput, SlotOutput},
	{PlaceholderTmpInput, SlotTmpInput},
	{PlaceholderTmpOutput, SlotTmpOutput},
}

type segment struct {
	literal string
	slot    Slot
}

// Paths carries the concrete values substituted for each slot.
type Paths struct {
	Input     string
	Output    string
	TmpInput  string
	TmpOutput string
}

func (p Paths) value(slot Slot) string {
	switch slot {
	case SlotInput:
		return p.Input
	case SlotOutput:
		return p.Output
	case SlotTmpInput:
		return p.TmpInput
	case SlotTmpOutput:
		return p.TmpOutput
	default:
		return ""
	}
}

// Template is a command parsed once into literal and slot segments per
// argument. The first argument is the program.
type Template struct {
	raw  []string
	args [][]segment
}

// ParseTemplate splits every argument into segments. A placeholder may appear
// anywhere inside an argument, e.g. "-sOutputFile=%TMPOUTPUTFILE%".
func ParseTemplate(args []string) (Template, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return Template{}, errors.New("template: program is required")
	}
	t := Template{raw: append([]string(nil), args...), args: make([][]segment, len(args))}
	for i, arg := range args {
		t.args[i] = parseArg(arg)
	}
	return t, nil
}

// MustTemplate is ParseTemplate for built-in stage tables.
func MustTemplate(args ...string) Template {
	t, err := ParseTemplate(args)
	if err != nil {
		panic(err)
	}
	return t
}

func parseArg(arg string) []segment {
	var segs []segment
	rest := arg
	for rest != "" {
		idx, token, slot := nextPlaceholder(rest)
		if idx < 0 {
			segs = append(segs, segment{literal: rest})
			break
		}
		if idx > 0 {
			segs = append(segs, segment{literal: rest[:idx]})
		}
		segs = append(segs, segment{slot: slot})
		rest = rest[idx+len(token):]
	}
	return segs
}

func nextPlaceholder(s string) (int, string, Slot) {
	best, token, slot := -1, "", SlotNone
	for _, p := range placeholders {
		if i := strings.Index(s, p.token); i >= 0 && (best < 0 || i < best) {
			best, token, slot = i, p.token, p.slot
		}
	}
	return best, token, slot
}

// Uses reports whether any argument references slot.
func (t Template) Uses(slot Slot) bool {
	for _, arg := range t.args {
		for _, seg := range arg {
			if seg.slot == slot {
				return true
			}
		}
	}
	return false
}

// Program is the executable name.
func (t Template) Program() string {
	if len(t.raw) == 0 {
		return ""
	}
	return t.raw[0]
}

// Render substitutes paths into every argument.
func (t Template) Render(p Paths) []string {
	out := make([]string, len(t.args))
	for i, arg := range t.args {
		var b strings.Builder
		for _, seg := range arg {
			if seg.slot == SlotNone {
				b.WriteString(seg.literal)
				continue
			}
			b.WriteString(p.value(seg.slot))
		}
		out[i] = b.String()
	}
	return out
}

// Signature is the rendered command joined by spaces, used for disabled
// plugin matching and logs.
func (t Template) Signature(p Paths) string {
	return strings.Join(t.Render(p), " ")
}

// String returns the unrendered command.
func (t Template) String() string {
	return strings.Join(t.raw, " ")
}

// Args returns a copy of the unrendered arguments.
func (t Template) Args() []string {
	return append([]string(nil), t.raw...)
}
