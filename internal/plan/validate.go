package plan

import (
	"fmt"
	"strings"

	"github.com/rahul/planweave/internal/core"
)

// Problems lists structural defects of the plan: empty or duplicate step
// ids, next_steps naming unknown steps and an unresolvable start step.
// None of these stop a run; the graph builder drops what it cannot wire.
func (p *WorkflowPlan) Problems() []string {
	var problems []string
	ids := make(map[string]bool, len(p.Steps))

	for i, s := range p.Steps {
		switch {
		case s.StepID == "":
			problems = append(problems, fmt.Sprintf("step #%d has no step_id", i+1))
		case ids[s.StepID]:
			problems = append(problems, fmt.Sprintf("duplicate step_id %q", s.StepID))
		default:
			ids[s.StepID] = true
		}
	}

	for _, s := range p.Steps {
		for _, next := range s.NextSteps {
			if !ids[next] {
				problems = append(problems, fmt.Sprintf("step %q links to unknown step %q", s.StepID, next))
			}
		}
	}

	if !ids[p.StartStep] {
		problems = append(problems, fmt.Sprintf("start_step %q is not a step of the plan", p.StartStep))
	}
	return problems
}

// Validate returns a validation error listing every problem, or nil.
func (p *WorkflowPlan) Validate() error {
	problems := p.Problems()
	if len(problems) == 0 {
		return nil
	}
	return core.ErrValidation(core.CodeInvalidPlan, strings.Join(problems, "; ")).
		WithDetail("problems", problems)
}
