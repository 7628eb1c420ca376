package agent

import (
	"context"

	"github.com/rahul/planweave/internal/flow"
	"github.com/rahul/planweave/internal/llm"
	"github.com/rahul/planweave/internal/observability"
	"github.com/rahul/planweave/internal/plan"
	"go.opentelemetry.io/otel/attribute"
)

// Analyzer turns the raw user request into a TaskAnalysis.
type Analyzer struct {
	completer llm.Completer
	prompts   *PromptManager
	logger    *observability.Logger
}

func NewAnalyzer(completer llm.Completer, prompts *PromptManager, logger *observability.Logger) *Analyzer {
	return &Analyzer{completer: completer, prompts: prompts, logger: logger}
}

// Analyze asks the model for a TaskAnalysis of userInput. An unusable
// response yields plan.DefaultAnalysis; only a failed completion call is
// returned as an error.
func (a *Analyzer) Analyze(ctx context.Context, userInput string) (*plan.TaskAnalysis, error) {
	prompt, err := a.prompts.Render(PromptAnalysis, AnalysisPrompt{UserInput: userInput})
	if err != nil {
		return nil, err
	}

	raw, err := a.completer.Complete(ctx, []llm.Message{llm.User(prompt)})
	if err != nil {
		return nil, err
	}

	analysis, err := plan.DecodeAnalysis(raw)
	if err != nil {
		a.logger.LogFallback(ctx, "analysis", err)
		observability.Counter(ctx, "planweave.fallbacks", attribute.String("stage", "analysis"))
		return plan.DefaultAnalysis(), nil
	}
	return analysis, nil
}

func (a *Analyzer) Prepare(ctx context.Context, s *SharedContext) (string, error) {
	enterPhase(ctx, a.logger, s, PhaseAnalyzing)
	return s.UserInput, nil
}

func (a *Analyzer) Execute(ctx context.Context, userInput string) (*plan.TaskAnalysis, error) {
	ctx, span := observability.StartSpan(ctx, "planweave.analyze")
	defer span.End()

	analysis, err := a.Analyze(ctx, userInput)
	observability.RecordSpanError(ctx, err)
	return analysis, err
}

func (a *Analyzer) Post(ctx context.Context, s *SharedContext, _ string, analysis *plan.TaskAnalysis) (flow.Action, error) {
	s.setTaskAnalysis(analysis)
	a.logger.LogAnalysis(ctx, analysis.TaskType, string(analysis.Complexity), len(analysis.RequiredSteps))
	return flow.DefaultAction, nil
}
