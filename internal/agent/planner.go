package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rahul/planweave/internal/flow"
	"github.com/rahul/planweave/internal/llm"
	"github.com/rahul/planweave/internal/observability"
	"github.com/rahul/planweave/internal/plan"
	"go.opentelemetry.io/otel/attribute"
)

// Planner turns a TaskAnalysis into a WorkflowPlan.
type Planner struct {
	completer llm.Completer
	prompts   *PromptManager
	logger    *observability.Logger
}

func NewPlanner(completer llm.Completer, prompts *PromptManager, logger *observability.Logger) *Planner {
	return &Planner{completer: completer, prompts: prompts, logger: logger}
}

// Plan asks the model for a WorkflowPlan. An unusable response yields
// plan.DefaultPlan; only a failed completion call is returned as an error.
func (p *Planner) Plan(ctx context.Context, analysis *plan.TaskAnalysis) (*plan.WorkflowPlan, error) {
	encoded, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return nil, err
	}

	kinds := make([]string, len(plan.Kinds))
	for i, k := range plan.Kinds {
		kinds[i] = string(k)
	}
	prompt, err := p.prompts.Render(PromptPlanning, PlanningPrompt{
		Analysis: string(encoded),
		Kinds:    strings.Join(kinds, ", "),
	})
	if err != nil {
		return nil, err
	}

	raw, err := p.completer.Complete(ctx, []llm.Message{llm.User(prompt)})
	if err != nil {
		return nil, err
	}

	wp, err := plan.DecodePlan(raw)
	if err != nil {
		p.logger.LogFallback(ctx, "plan", err)
		observability.Counter(ctx, "planweave.fallbacks", attribute.String("stage", "plan"))
		return plan.DefaultPlan(), nil
	}
	return wp, nil
}

func (p *Planner) Prepare(ctx context.Context, s *SharedContext) (*plan.TaskAnalysis, error) {
	enterPhase(ctx, p.logger, s, PhasePlanning)
	if a := s.TaskAnalysis(); a != nil {
		return a, nil
	}
	return plan.DefaultAnalysis(), nil
}

func (p *Planner) Execute(ctx context.Context, analysis *plan.TaskAnalysis) (*plan.WorkflowPlan, error) {
	ctx, span := observability.StartSpan(ctx, "planweave.plan")
	defer span.End()

	wp, err := p.Plan(ctx, analysis)
	observability.RecordSpanError(ctx, err)
	return wp, err
}

func (p *Planner) Post(ctx context.Context, s *SharedContext, _ *plan.TaskAnalysis, wp *plan.WorkflowPlan) (flow.Action, error) {
	s.setWorkflowPlan(wp)
	p.logger.LogPlan(ctx, wp.WorkflowName, len(wp.Steps), wp.StartStep)
	return flow.DefaultAction, nil
}
