package plan

import (
	"fmt"
	"strings"

	"squish/internal/classify"
	"squish/internal/config"
	"squish/internal/services"
)

// Plan maps kinds to ordered stage lists. It is read-only after Build and
// safe to share between jobs.
type Plan struct {
	order  []classify.Kind
	stages map[classify.Kind][]StageSpec
}

// Build evaluates the builtin table and custom stages against cfg. Disabled
// kinds are left out entirely.
func Build(cfg *config.Config) (*Plan, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "plan", "build", "config is required", nil)
	}
	p := &Plan{stages: make(map[classify.Kind][]StageSpec)}

	for _, entry := range builtinTable() {
		if !cfg.KindEnabled(string(entry.kind)) {
			continue
		}
		p.add(entry.kind, entry.stages(cfg)...)
	}

	for i, custom := range cfg.CustomStages {
		kind := classify.Kind(strings.ToLower(strings.TrimSpace(custom.Kind)))
		if !cfg.KindEnabled(string(kind)) {
			continue
		}
		tmpl, err := ParseTemplate(custom.Args)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "plan", "custom stage",
				fmt.Sprintf("custom_stages[%d] (%s)", i, custom.Name), err)
		}
		p.add(kind, StageSpec{
			Kind:      kind,
			Name:      custom.Name,
			Template:  tmpl,
			ExitMin:   custom.ExitMin,
			ExitMax:   custom.ExitMax,
			ExitCodes: append([]int(nil), custom.ExitCodes...),
			Custom:    true,
		})
	}
	return p, nil
}

func (p *Plan) add(kind classify.Kind, specs ...StageSpec) {
	if _, ok := p.stages[kind]; !ok {
		p.order = append(p.order, kind)
	}
	p.stages[kind] = append(p.stages[kind], specs...)
}

// Kinds returns the declared kinds in plan order.
func (p *Plan) Kinds() []classify.Kind {
	return append([]classify.Kind(nil), p.order...)
}

// Stages returns the ordered stages for kind.
func (p *Plan) Stages(kind classify.Kind) []StageSpec {
	return append([]StageSpec(nil), p.stages[kind]...)
}

// Resolve intersects classifier tags with the declared kinds, in plan order.
// The first element is the kind reported for the artifact.
func (p *Plan) Resolve(tags []classify.Kind) []classify.Kind {
	var out []classify.Kind
	for _, kind := range p.order {
		for _, tag := range tags {
			if tag == kind {
				out = append(out, kind)
				break
			}
		}
	}
	return out
}

// Programs lists every distinct executable the plan can invoke, in first use
// order.
func (p *Plan) Programs() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, kind := range p.order {
		for _, spec := range p.stages[kind] {
			prog := spec.Template.Program()
			if _, ok := seen[prog]; ok {
				continue
			}
			seen[prog] = struct{}{}
			out = append(out, prog)
		}
	}
	return out
}

// StagesUsing returns the labels of every stage that runs program.
func (p *Plan) StagesUsing(program string) []string {
	var out []string
	for _, kind := range p.order {
		for _, spec := range p.stages[kind] {
			if spec.Template.Program() == program {
				out = append(out, spec.Label())
			}
		}
	}
	return out
}
