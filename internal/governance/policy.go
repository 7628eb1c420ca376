package governance

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/rahul/planweave/internal/plan"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request describes a step about to be dispatched.
type Request struct {
	StepID string
	Kind   plan.StepKind
	Params map[string]any
	RunID  string
}

// RequestForStep builds the request for a plan step.
func RequestForStep(runID string, step plan.StepSpec) Request {
	return Request{StepID: step.StepID, Kind: step.Type, Params: step.Params, RunID: runID}
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// Allowed reports whether the step may run.
func (r Result) Allowed() bool {
	return r.Effect != EffectDeny
}

// PolicyEngine evaluates steps against a set of rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine denies step kinds by name and params by regex.
// With no rules it allows everything.
type DefaultPolicyEngine struct {
	DeniedKinds map[plan.StepKind]bool
	DeniedRegex []*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedKinds: make(map[plan.StepKind]bool),
		DeniedRegex: make([]*regexp.Regexp, 0),
	}
}

// FromRules builds an engine from configured kind names and param patterns.
func FromRules(denyKinds, denyParams []string) (*DefaultPolicyEngine, error) {
	e := NewDefaultPolicyEngine()
	for _, k := range denyKinds {
		e.DenyKind(plan.ParseStepKind(k))
	}
	for _, p := range denyParams {
		if err := e.DenyParams(p); err != nil {
			return nil, fmt.Errorf("invalid deny_params pattern %q: %w", p, err)
		}
	}
	return e, nil
}

func (e *DefaultPolicyEngine) DenyKind(kind plan.StepKind) {
	e.DeniedKinds[kind] = true
}

func (e *DefaultPolicyEngine) DenyParams(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if e.DeniedKinds[req.Kind] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("step type '%s' is restricted by system policy", req.Kind),
		}, nil
	}

	if len(e.DeniedRegex) > 0 && len(req.Params) > 0 {
		// map keys marshal sorted, so the text is stable
		params, err := json.Marshal(req.Params)
		if err != nil {
			return Result{}, fmt.Errorf("encoding params of step %s: %w", req.StepID, err)
		}
		for _, re := range e.DeniedRegex {
			if re.Match(params) {
				return Result{
					Effect: EffectDeny,
					Reason: fmt.Sprintf("params match restricted pattern: %s", re.String()),
				}, nil
			}
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "approved by default policy",
	}, nil
}
