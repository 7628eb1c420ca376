package agent

import (
	"context"

	"github.com/rahul/planweave/internal/flow"
	"github.com/rahul/planweave/internal/graph"
	"github.com/rahul/planweave/internal/observability"
	"github.com/rahul/planweave/internal/plan"
	"go.opentelemetry.io/otel/attribute"
)

// ExecutionFlow compiles the run's current plan into a fresh graph and
// walks it one step at a time. From every step it advances only to the
// first listed next step. When that id names no step the walk ends, and
// the remaining next steps are never run.
type ExecutionFlow struct {
	exec     *StepExecutor
	maxSteps int
	logger   *observability.Logger
}

func NewExecutionFlow(exec *StepExecutor, maxSteps int, logger *observability.Logger) *ExecutionFlow {
	return &ExecutionFlow{exec: exec, maxSteps: maxSteps, logger: logger}
}

type walkInput struct {
	graph  *graph.ExecutionGraph
	shared *SharedContext
}

// Compile links one flow node per graph node. The returned flow has no
// entry when the graph has none.
func (f *ExecutionFlow) Compile(g *graph.ExecutionGraph, opts ...flow.Option) *flow.Flow[*SharedContext] {
	nodes := make(map[string]*flow.Node[*SharedContext], g.Len())
	for _, id := range g.Order {
		gn := g.Nodes[id]
		unit := &stepNode{exec: f.exec, step: gn.Spec}
		if len(gn.Spec.NextSteps) > 0 {
			unit.successor = gn.Spec.NextSteps[0]
		}
		nodes[id] = flow.NewNode[*SharedContext, stepInput, string](id, unit)
	}
	for _, id := range g.Order {
		for _, next := range g.Nodes[id].Successors {
			nodes[id].Link(flow.Action(next), nodes[next])
		}
	}

	walk := flow.New[*SharedContext](opts...)
	if g.HasEntry() {
		walk.Start(nodes[g.Entry])
	}
	return walk
}

func (f *ExecutionFlow) Prepare(ctx context.Context, s *SharedContext) (walkInput, error) {
	enterPhase(ctx, f.logger, s, PhaseExecuting)

	wp := s.WorkflowPlan()
	if wp == nil {
		wp = &plan.WorkflowPlan{}
	}
	g := graph.Build(wp)
	for _, w := range g.Warnings {
		f.logger.LogWarn(ctx, observability.EventTypePlan, w, map[string]string{"workflow_name": wp.WorkflowName})
	}
	return walkInput{graph: g, shared: s}, nil
}

func (f *ExecutionFlow) Execute(ctx context.Context, in walkInput) (flow.Trace, error) {
	ctx, span := observability.StartSpan(ctx, "planweave.execute",
		attribute.Int("nodes", in.graph.Len()),
		attribute.String("entry", in.graph.Entry))
	defer span.End()

	walk := f.Compile(in.graph,
		flow.WithMaxSteps(f.maxSteps),
		flow.WithHaltHook(f.halted),
	)
	trace, err := walk.Run(ctx, in.shared)
	observability.RecordSpanError(ctx, err)
	return trace, err
}

func (f *ExecutionFlow) halted(ctx context.Context, trace flow.Trace) {
	switch trace.Halt {
	case flow.HaltRevisit:
		f.logger.LogWarn(ctx, observability.EventTypeStep, "successor already executed, walk stopped",
			map[string]any{"revisited": trace.Revisited, "path": trace.Path})
	case flow.HaltStepLimit:
		f.logger.LogWarn(ctx, observability.EventTypeStep, "step limit reached, walk stopped",
			map[string]any{"max_steps": f.maxSteps, "path": trace.Path})
	case flow.HaltNoEntry:
		f.logger.LogWarn(ctx, observability.EventTypeStep, "graph has no entry step, nothing executed", nil)
	}
}

func (f *ExecutionFlow) Post(_ context.Context, s *SharedContext, in walkInput, trace flow.Trace) (flow.Action, error) {
	s.setExecution(s.lastOutput(), trace.Halt, in.graph.Warnings)
	return flow.DefaultAction, nil
}
