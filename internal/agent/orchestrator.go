package agent

import (
	"context"

	"github.com/google/uuid"
	"github.com/rahul/planweave/internal/flow"
	"github.com/rahul/planweave/internal/governance"
	"github.com/rahul/planweave/internal/llm"
	"github.com/rahul/planweave/internal/observability"
	"github.com/rahul/planweave/internal/plan"
	"go.opentelemetry.io/otel/attribute"
)

// Runner runs one user request end to end.
type Runner interface {
	Run(ctx context.Context, userInput string) (*Result, error)
}

// Options wires an Orchestrator. Completer is required.
type Options struct {
	Completer llm.Completer
	Prompts   *PromptManager
	Policy    governance.PolicyEngine
	Logger    *observability.Logger
	// MaxSteps caps the steps of one graph walk. Zero leaves only the
	// visit-once bound.
	MaxSteps int
}

// Orchestrator sequences analysis, planning and execution. Stages hand
// data to each other only through the run's SharedContext.
type Orchestrator struct {
	Analyzer  *Analyzer
	Planner   *Planner
	Execution *ExecutionFlow

	pipeline *flow.Flow[*SharedContext]
	logger   *observability.Logger
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Prompts == nil {
		opts.Prompts = DefaultPromptManager()
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewNop()
	}

	o := &Orchestrator{
		Analyzer:  NewAnalyzer(opts.Completer, opts.Prompts, opts.Logger),
		Planner:   NewPlanner(opts.Completer, opts.Prompts, opts.Logger),
		Execution: NewExecutionFlow(NewStepExecutor(opts.Completer, opts.Prompts, opts.Policy, opts.Logger), opts.MaxSteps, opts.Logger),
		logger:    opts.Logger,
	}

	analyze := flow.NewNode[*SharedContext, string, *plan.TaskAnalysis]("analyze", o.Analyzer)
	planning := flow.NewNode[*SharedContext, *plan.TaskAnalysis, *plan.WorkflowPlan]("plan", o.Planner)
	execute := flow.NewNode[*SharedContext, walkInput, flow.Trace]("execute", o.Execution)
	analyze.Then(planning).Then(execute)

	o.pipeline = flow.New[*SharedContext]()
	o.pipeline.Start(analyze)
	return o
}

// Run executes userInput through all stages. The aggregated result is
// returned even when a stage fails, holding everything written before the
// failure.
func (o *Orchestrator) Run(ctx context.Context, userInput string) (*Result, error) {
	shared := NewSharedContext(uuid.NewString(), userInput)
	ctx = observability.WithRunID(ctx, shared.RunID)
	ctx, span := observability.StartSpan(ctx, "planweave.run", attribute.String("run_id", shared.RunID))
	defer span.End()

	observability.RunStarted()
	defer observability.RunFinished()

	if _, err := o.pipeline.Run(ctx, shared); err != nil {
		observability.RecordSpanError(ctx, err)
		o.logger.Slog().ErrorContext(ctx, "run failed",
			"run_id", shared.RunID, "phase", string(shared.Phase()), "step", shared.CurrentStep(), "error", err)
		return shared.Result(), err
	}

	enterPhase(ctx, o.logger, shared, PhaseDone)
	return shared.Result(), nil
}

func enterPhase(ctx context.Context, logger *observability.Logger, s *SharedContext, phase Phase) {
	s.enter(phase)
	observability.SetStatus(string(phase), s.RunID)
	logger.LogPhase(ctx, string(phase))
}
