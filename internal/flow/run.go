package flow

import (
	"context"
)

// Halt says why a walk stopped.
type Halt string

const (
	HaltNoEntry   Halt = "no_entry"   // Start was never declared
	HaltCompleted Halt = "completed"  // last node had no successor for its action
	HaltRevisit   Halt = "revisit"    // action led back to a visited node
	HaltStepLimit Halt = "step_limit" // MaxSteps reached
	HaltFailed    Halt = "failed"     // a node returned an error
	HaltCanceled  Halt = "canceled"   // context done between nodes
)

// Trace records one walk.
type Trace struct {
	Path       []string `json:"path"`
	LastAction Action   `json:"last_action"`
	Halt       Halt     `json:"halt"`
	// Revisited is the node the walk refused to enter again, if any.
	Revisited string `json:"revisited,omitempty"`
}

// Visit is called before a node runs.
type Visit func(ctx context.Context, node string, step int)

// Flow is a walkable graph of Nodes. A Flow is immutable after setup and
// can serve concurrent runs as long as its nodes keep no per-run state.
type Flow[S any] struct {
	start    *Node[S]
	maxSteps int
	onVisit  Visit
	onHalt   func(ctx context.Context, trace Trace)
}

// Option configures a Flow.
type Option func(*flowOptions)

type flowOptions struct {
	maxSteps int
	onVisit  Visit
	onHalt   func(ctx context.Context, trace Trace)
}

// WithMaxSteps caps the number of nodes one run may execute. Zero or
// negative means no cap beyond the visit-once rule.
func WithMaxSteps(n int) Option {
	return func(o *flowOptions) { o.maxSteps = n }
}

// WithVisitHook registers a callback invoked before each node runs.
func WithVisitHook(fn Visit) Option {
	return func(o *flowOptions) { o.onVisit = fn }
}

// WithHaltHook registers a callback invoked when a walk stops.
func WithHaltHook(fn func(ctx context.Context, trace Trace)) Option {
	return func(o *flowOptions) { o.onHalt = fn }
}

// New creates an empty Flow.
func New[S any](opts ...Option) *Flow[S] {
	var o flowOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Flow[S]{maxSteps: o.maxSteps, onVisit: o.onVisit, onHalt: o.onHalt}
}

// Start declares the entry node. A nil node leaves the flow without entry.
func (f *Flow[S]) Start(n *Node[S]) *Node[S] {
	f.start = n
	return n
}

// HasEntry reports whether Start was given a node.
func (f *Flow[S]) HasEntry() bool {
	return f.start != nil
}

// Run walks the flow from its entry node. Without an entry it returns
// immediately with HaltNoEntry and an empty path.
func (f *Flow[S]) Run(ctx context.Context, state S) (Trace, error) {
	trace := Trace{Path: []string{}}
	if f.start == nil {
		trace.Halt = HaltNoEntry
		f.halted(ctx, trace)
		return trace, nil
	}

	visited := make(map[*Node[S]]bool)
	for cur := f.start; cur != nil; {
		if err := ctx.Err(); err != nil {
			trace.Halt = HaltCanceled
			f.halted(ctx, trace)
			return trace, err
		}
		if f.maxSteps > 0 && len(trace.Path) >= f.maxSteps {
			trace.Halt = HaltStepLimit
			f.halted(ctx, trace)
			return trace, nil
		}

		visited[cur] = true
		trace.Path = append(trace.Path, cur.name)
		if f.onVisit != nil {
			f.onVisit(ctx, cur.name, len(trace.Path))
		}

		action, err := cur.run(ctx, state)
		trace.LastAction = action
		if err != nil {
			trace.Halt = HaltFailed
			f.halted(ctx, trace)
			return trace, err
		}

		next, ok := cur.Successor(action)
		if !ok {
			break
		}
		if visited[next] {
			trace.Halt = HaltRevisit
			trace.Revisited = next.name
			f.halted(ctx, trace)
			return trace, nil
		}
		cur = next
	}

	trace.Halt = HaltCompleted
	f.halted(ctx, trace)
	return trace, nil
}

func (f *Flow[S]) halted(ctx context.Context, trace Trace) {
	if f.onHalt != nil {
		f.onHalt(ctx, trace)
	}
}
