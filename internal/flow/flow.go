// Package flow runs graphs of three-phase work units.
//
// A unit implements Lifecycle: Prepare reads what it needs from the shared
// state, Execute does the work without touching the state, and Post writes
// results back and names the action that selects the successor. Units are
// wrapped in Nodes, successors are declared with Link or Then, and a Flow
// walks from its Start node until a node has no successor for the action
// it returned.
//
// Exactly one node runs at a time. A node is entered at most once per run:
// an action that leads back to an already visited node ends the walk.
package flow

import (
	"context"
	"fmt"
)

// Action selects the successor of a node. The empty action ends the walk.
type Action string

const (
	// DefaultAction is the action used by Then.
	DefaultAction Action = "default"
	// End stops the walk.
	End Action = ""
)

// Lifecycle is the three-phase contract of a work unit. S is the shared
// state type, P what Prepare hands to Execute and R the execution result.
type Lifecycle[S, P, R any] interface {
	Prepare(ctx context.Context, state S) (P, error)
	Execute(ctx context.Context, prep P) (R, error)
	Post(ctx context.Context, state S, prep P, res R) (Action, error)
}

// Phase names a lifecycle phase in errors.
type Phase string

const (
	PhasePrepare Phase = "prepare"
	PhaseExecute Phase = "execute"
	PhasePost    Phase = "post"
)

// NodeError reports which node and phase failed.
type NodeError struct {
	Node  string
	Phase Phase
	Err   error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %s: %v", e.Node, e.Phase, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// Node is a named work unit plus its declared successors.
type Node[S any] struct {
	name       string
	run        func(ctx context.Context, state S) (Action, error)
	successors map[Action]*Node[S]
}

// NewNode wraps a Lifecycle into a Node.
func NewNode[S, P, R any](name string, unit Lifecycle[S, P, R]) *Node[S] {
	return &Node[S]{
		name: name,
		run: func(ctx context.Context, state S) (Action, error) {
			prep, err := unit.Prepare(ctx, state)
			if err != nil {
				return End, &NodeError{Node: name, Phase: PhasePrepare, Err: err}
			}
			res, err := unit.Execute(ctx, prep)
			if err != nil {
				return End, &NodeError{Node: name, Phase: PhaseExecute, Err: err}
			}
			action, err := unit.Post(ctx, state, prep, res)
			if err != nil {
				return End, &NodeError{Node: name, Phase: PhasePost, Err: err}
			}
			return action, nil
		},
		successors: make(map[Action]*Node[S]),
	}
}

// Name returns the node name.
func (n *Node[S]) Name() string {
	return n.name
}

// Link declares next as the successor for action and returns next, so
// chains read left to right. Linking the same action twice replaces the
// earlier successor.
func (n *Node[S]) Link(action Action, next *Node[S]) *Node[S] {
	n.successors[action] = next
	return next
}

// Then links next under DefaultAction.
func (n *Node[S]) Then(next *Node[S]) *Node[S] {
	return n.Link(DefaultAction, next)
}

// Successor returns the node linked under action, if any.
func (n *Node[S]) Successor(action Action) (*Node[S], bool) {
	if action == End {
		return nil, false
	}
	next, ok := n.successors[action]
	return next, ok
}
