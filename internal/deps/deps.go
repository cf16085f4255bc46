// Package deps reports which external tools the stage plan can find.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"squish/internal/plan"
)

// Requirement defines an external tool squish may invoke.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

// FromPlan lists one requirement per distinct program of p. Every tool is
// optional: a missing binary only fails the stages that use it.
func FromPlan(p *plan.Plan) []Requirement {
	programs := p.Programs()
	reqs := make([]Requirement, 0, len(programs))
	for _, prog := range programs {
		reqs = append(reqs, Requirement{
			Name:        prog,
			Command:     prog,
			Description: strings.Join(p.StagesUsing(prog), ", "),
			Optional:    true,
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// Missing returns the statuses that are not available.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available {
			out = append(out, s)
		}
	}
	return out
}
