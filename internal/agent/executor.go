package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rahul/planweave/internal/flow"
	"github.com/rahul/planweave/internal/governance"
	"github.com/rahul/planweave/internal/llm"
	"github.com/rahul/planweave/internal/observability"
	"github.com/rahul/planweave/internal/plan"
	"go.opentelemetry.io/otel/attribute"
)

// StepExecutor produces the output of a single plan step.
type StepExecutor struct {
	completer llm.Completer
	prompts   *PromptManager
	policy    governance.PolicyEngine
	logger    *observability.Logger
}

func NewStepExecutor(completer llm.Completer, prompts *PromptManager, policy governance.PolicyEngine, logger *observability.Logger) *StepExecutor {
	return &StepExecutor{completer: completer, prompts: prompts, policy: policy, logger: logger}
}

// Execute runs step for userInput. A step denied by policy is not
// dispatched; its output is the denial reason.
func (e *StepExecutor) Execute(ctx context.Context, step plan.StepSpec, userInput string) (string, error) {
	if e.policy != nil {
		res, err := e.policy.Evaluate(ctx, governance.RequestForStep(observability.RunIDFrom(ctx), step))
		if err != nil {
			return "", err
		}
		e.logger.LogPolicy(ctx, step.StepID, res.Allowed(), res.Reason)
		if !res.Allowed() {
			return "step denied by policy: " + res.Reason, nil
		}
	}

	switch plan.ParseStepKind(string(step.Type)) {
	case plan.KindDataProcessing:
		params := []byte("{}")
		var err error
		if len(step.Params) > 0 {
			params, err = json.Marshal(step.Params)
		}
		if err != nil {
			return "", fmt.Errorf("encoding params of step %s: %w", step.StepID, err)
		}
		return e.complete(ctx, PromptDataProcessing, step, userInput, string(params))
	case plan.KindTextAnalysis:
		return e.complete(ctx, PromptTextAnalysis, step, userInput, "")
	case plan.KindAPICall:
		return "Executed API call: " + step.Name, nil
	case plan.KindFileOperation:
		return "Executed file operation: " + step.Name, nil
	default:
		return e.complete(ctx, PromptGeneric, step, userInput, "")
	}
}

func (e *StepExecutor) complete(ctx context.Context, prompt string, step plan.StepSpec, userInput, params string) (string, error) {
	text, err := e.prompts.Render(prompt, StepPrompt{
		StepID:      step.StepID,
		Name:        step.Name,
		Description: step.Description,
		UserInput:   userInput,
		Params:      params,
	})
	if err != nil {
		return "", err
	}
	return e.completer.Complete(ctx, []llm.Message{llm.User(text)})
}

// stepNode runs one graph node. successor is the step advanced to after
// it, empty when the walk ends there.
type stepNode struct {
	exec      *StepExecutor
	step      plan.StepSpec
	successor string
}

type stepInput struct {
	step      plan.StepSpec
	userInput string
}

func (n *stepNode) Prepare(ctx context.Context, s *SharedContext) (stepInput, error) {
	s.setCurrentStep(n.step.StepID)
	observability.SetStatus(string(PhaseExecuting), n.step.StepID)
	return stepInput{step: n.step, userInput: s.UserInput}, nil
}

func (n *stepNode) Execute(ctx context.Context, in stepInput) (string, error) {
	ctx, span := observability.StartSpan(ctx, "planweave.step",
		attribute.String("step_id", in.step.StepID),
		attribute.String("type", string(in.step.Type)))
	defer span.End()

	start := time.Now()
	out, err := n.exec.Execute(ctx, in.step, in.userInput)
	if err != nil {
		observability.RecordSpanError(ctx, err)
		return "", err
	}
	n.exec.logger.LogStep(ctx, in.step.StepID, string(in.step.Type), time.Since(start))
	observability.Counter(ctx, "planweave.steps", attribute.String("type", string(in.step.Type)))
	return out, nil
}

func (n *stepNode) Post(_ context.Context, s *SharedContext, in stepInput, out string) (flow.Action, error) {
	s.recordStep(in.step.StepID, out)
	if n.successor == "" {
		return flow.End, nil
	}
	return flow.Action(n.successor), nil
}
