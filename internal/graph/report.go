package graph

import (
	"fmt"
	"io"

	"github.com/rahul/planweave/internal/plan"
)

// NodeView is the flattened form of a node used in reports.
type NodeView struct {
	StepID     string        `json:"step_id" yaml:"step_id"`
	Name       string        `json:"name,omitempty" yaml:"name,omitempty"`
	Type       plan.StepKind `json:"type" yaml:"type"`
	Successors []string      `json:"successors" yaml:"successors"`
}

// Report describes the graph a plan compiles to, without running it.
type Report struct {
	Workflow string     `json:"workflow_name" yaml:"workflow_name"`
	Entry    string     `json:"entry" yaml:"entry"`
	Nodes    []NodeView `json:"nodes" yaml:"nodes"`
	Edges    []Edge     `json:"edges" yaml:"edges"`
	Warnings []string   `json:"warnings" yaml:"warnings"`
	Problems []string   `json:"problems" yaml:"problems"`
}

// Inspect builds p and reports the result together with the plan's
// validation problems.
func Inspect(p *plan.WorkflowPlan) Report {
	g := Build(p)
	r := Report{
		Entry:    g.Entry,
		Nodes:    make([]NodeView, 0, g.Len()),
		Edges:    g.Edges(),
		Warnings: append([]string{}, g.Warnings...),
		Problems: []string{},
	}
	if p != nil {
		r.Workflow = p.WorkflowName
		r.Problems = append(r.Problems, p.Problems()...)
	}
	for _, id := range g.Order {
		n := g.Nodes[id]
		r.Nodes = append(r.Nodes, NodeView{
			StepID:     id,
			Name:       n.Spec.Name,
			Type:       n.Spec.Type,
			Successors: append([]string{}, n.Successors...),
		})
	}
	return r
}

// WriteText renders r for terminals.
func (r Report) WriteText(w io.Writer) error {
	entry := r.Entry
	if entry == "" {
		entry = "(none)"
	}
	if _, err := fmt.Fprintf(w, "workflow: %s\nentry: %s\nnodes: %d\n", r.Workflow, entry, len(r.Nodes)); err != nil {
		return err
	}
	for _, n := range r.Nodes {
		fmt.Fprintf(w, "  %s [%s] %s\n", n.StepID, n.Type, n.Name)
		for _, next := range n.Successors {
			fmt.Fprintf(w, "    -> %s\n", next)
		}
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	for _, p := range r.Problems {
		fmt.Fprintf(w, "problem: %s\n", p)
	}
	return nil
}
