// Package plan holds the structures exchanged with the completion service
// (task analysis and workflow plan) and the tolerant decoding around them.
package plan

import (
	"encoding/json"
	"strings"
)

// Complexity grades how involved a task is.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// TaskAnalysis is the structured reading of a user's free-form request.
type TaskAnalysis struct {
	TaskType      string     `json:"task_type" yaml:"task_type"`
	Complexity    Complexity `json:"complexity" yaml:"complexity"`
	RequiredSteps []string   `json:"required_steps" yaml:"required_steps"`
	Dependencies  []string   `json:"dependencies" yaml:"dependencies"` // "A -> B" rules
	EstimatedTime string     `json:"estimated_time" yaml:"estimated_time"`
}

// StepSpec is one declarative unit of work within a WorkflowPlan.
type StepSpec struct {
	StepID      string         `json:"step_id" yaml:"step_id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Type        StepKind       `json:"type" yaml:"type"`
	Params      map[string]any `json:"params" yaml:"params"`
	NextSteps   []string       `json:"next_steps" yaml:"next_steps"`
	// Condition is carried through but never evaluated.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// WorkflowPlan is an ordered list of steps plus the id of the entry step.
type WorkflowPlan struct {
	WorkflowName string     `json:"workflow_name" yaml:"workflow_name"`
	Steps        []StepSpec `json:"steps" yaml:"steps"`
	StartStep    string     `json:"start_step" yaml:"start_step"`
}

// DefaultAnalysis is substituted when the analysis response is unusable.
func DefaultAnalysis() *TaskAnalysis {
	return &TaskAnalysis{
		TaskType:      "generic task",
		Complexity:    ComplexityMedium,
		RequiredSteps: []string{"analyze input", "process data", "produce result"},
		Dependencies:  []string{},
		EstimatedTime: "unknown",
	}
}

// DefaultPlan is substituted when the planning response is unusable. It
// always has exactly one step and a resolvable start step.
func DefaultPlan() *WorkflowPlan {
	return &WorkflowPlan{
		WorkflowName: "default workflow",
		Steps: []StepSpec{
			{
				StepID:      "step_1",
				Name:        "process input",
				Description: "process the user input",
				Type:        KindDataProcessing,
				Params:      map[string]any{},
				NextSteps:   []string{},
			},
		},
		StartStep: "step_1",
	}
}

// Step returns the first step with the given id.
func (p *WorkflowPlan) Step(id string) (StepSpec, bool) {
	for _, s := range p.Steps {
		if s.StepID == id {
			return s, true
		}
	}
	return StepSpec{}, false
}

// ParseComplexity maps free text onto a Complexity, defaulting to medium.
func ParseComplexity(s string) Complexity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple", "easy", "low", "简单":
		return ComplexitySimple
	case "complex", "hard", "high", "复杂":
		return ComplexityComplex
	default:
		return ComplexityMedium
	}
}

// UnmarshalJSON never fails: non-string values become medium.
func (c *Complexity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*c = ComplexityMedium
		return nil
	}
	*c = ParseComplexity(s)
	return nil
}

// UnmarshalJSON decodes a step field by field. A params value that is not
// an object becomes empty and a condition that is not a string is dropped,
// so one badly typed optional field keeps the rest of the step.
func (s *StepSpec) UnmarshalJSON(data []byte) error {
	type plain StepSpec
	aux := struct {
		*plain
		Params    json.RawMessage `json:"params"`
		Condition json.RawMessage `json:"condition"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	s.Params = nil
	if len(aux.Params) > 0 {
		var params map[string]any
		if err := json.Unmarshal(aux.Params, &params); err == nil {
			s.Params = params
		}
	}
	s.Condition = ""
	if len(aux.Condition) > 0 {
		var cond string
		if err := json.Unmarshal(aux.Condition, &cond); err == nil {
			s.Condition = cond
		}
	}
	return nil
}
