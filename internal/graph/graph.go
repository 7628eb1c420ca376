// Package graph compiles a WorkflowPlan into an ExecutionGraph: one node per
// step, keyed by step id, with successor edges stored as step ids.
//
// Building is pure. References that do not resolve are dropped and reported
// as warnings, never as errors.
package graph

import (
	"fmt"

	"github.com/rahul/planweave/internal/plan"
)

// Node wraps one step and the ids of its resolved successors, in the order
// the step listed them.
type Node struct {
	Spec       plan.StepSpec `json:"spec"`
	Successors []string      `json:"successors"`
}

// ID returns the step id of the node.
func (n *Node) ID() string {
	return n.Spec.StepID
}

// Edge is a directed link between two step ids.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ExecutionGraph is the arena of nodes built from one plan.
type ExecutionGraph struct {
	Nodes map[string]*Node `json:"nodes"`
	// Order lists node ids in plan order.
	Order []string `json:"order"`
	// Entry is the start step id, or empty when the plan's start_step does
	// not name a node.
	Entry    string   `json:"entry"`
	Warnings []string `json:"warnings,omitempty"`
}

// Build compiles p. Steps with an empty id are skipped; for duplicate ids
// the first step wins. A next_steps entry is wired only when it names a
// node of the graph, and each target is wired at most once per node.
func Build(p *plan.WorkflowPlan) *ExecutionGraph {
	g := &ExecutionGraph{
		Nodes: make(map[string]*Node),
		Order: []string{},
	}
	if p == nil {
		g.Warnings = append(g.Warnings, "no plan")
		return g
	}

	for i, step := range p.Steps {
		switch {
		case step.StepID == "":
			g.warnf("step #%d has no step_id, skipped", i+1)
			continue
		case g.Nodes[step.StepID] != nil:
			g.warnf("duplicate step_id %q at step #%d, skipped", step.StepID, i+1)
			continue
		}
		g.Nodes[step.StepID] = &Node{Spec: step, Successors: []string{}}
		g.Order = append(g.Order, step.StepID)
	}

	for _, id := range g.Order {
		n := g.Nodes[id]
		seen := make(map[string]bool)
		for _, next := range n.Spec.NextSteps {
			if g.Nodes[next] == nil {
				g.warnf("step %q: next step %q does not exist, dropped", id, next)
				continue
			}
			if seen[next] {
				continue
			}
			seen[next] = true
			n.Successors = append(n.Successors, next)
		}
	}

	if g.Nodes[p.StartStep] != nil {
		g.Entry = p.StartStep
	} else {
		g.warnf("start_step %q does not exist, graph has no entry", p.StartStep)
	}
	return g
}

func (g *ExecutionGraph) warnf(format string, args ...any) {
	g.Warnings = append(g.Warnings, fmt.Sprintf(format, args...))
}

// HasEntry reports whether the graph has an entry node.
func (g *ExecutionGraph) HasEntry() bool {
	return g.Entry != ""
}

// Node returns the node for id.
func (g *ExecutionGraph) Node(id string) (*Node, bool) {
	n, ok := g.Nodes[id]
	return n, ok
}

// Edges lists every edge in plan order of the source node.
func (g *ExecutionGraph) Edges() []Edge {
	edges := []Edge{}
	for _, id := range g.Order {
		for _, next := range g.Nodes[id].Successors {
			edges = append(edges, Edge{From: id, To: next})
		}
	}
	return edges
}

// Len returns the number of nodes.
func (g *ExecutionGraph) Len() int {
	return len(g.Order)
}
