package agent

import (
	"maps"
	"slices"

	"github.com/rahul/planweave/internal/flow"
	"github.com/rahul/planweave/internal/plan"
)

// Phase is the run-level state of the pipeline.
type Phase string

const (
	PhaseStart     Phase = "START"
	PhaseAnalyzing Phase = "ANALYZING"
	PhasePlanning  Phase = "PLANNING"
	PhaseExecuting Phase = "EXECUTING"
	PhaseDone      Phase = "DONE"
)

// SharedContext is the state of one run. Each stage writes only its own
// field through the setter named after it. A SharedContext belongs to a
// single run and must not be read while that run is in flight.
type SharedContext struct {
	RunID     string
	UserInput string

	phase        Phase
	currentStep  string
	taskAnalysis *plan.TaskAnalysis
	workflowPlan *plan.WorkflowPlan
	stepResults  map[string]string
	stepOrder    []string
	finalResult  string
	halt         flow.Halt
	warnings     []string
}

// NewSharedContext starts the state of a run.
func NewSharedContext(runID, userInput string) *SharedContext {
	return &SharedContext{
		RunID:       runID,
		UserInput:   userInput,
		phase:       PhaseStart,
		stepResults: make(map[string]string),
		stepOrder:   []string{},
	}
}

func (c *SharedContext) Phase() Phase {
	return c.phase
}

// CurrentStep is the step being executed while in PhaseExecuting.
func (c *SharedContext) CurrentStep() string {
	return c.currentStep
}

func (c *SharedContext) TaskAnalysis() *plan.TaskAnalysis {
	return c.taskAnalysis
}

func (c *SharedContext) WorkflowPlan() *plan.WorkflowPlan {
	return c.workflowPlan
}

// StepResult returns the recorded output of a step.
func (c *SharedContext) StepResult(stepID string) (string, bool) {
	out, ok := c.stepResults[stepID]
	return out, ok
}

func (c *SharedContext) enter(phase Phase) {
	c.phase = phase
	if phase != PhaseExecuting {
		c.currentStep = ""
	}
}

func (c *SharedContext) setCurrentStep(stepID string) {
	c.currentStep = stepID
}

func (c *SharedContext) setTaskAnalysis(a *plan.TaskAnalysis) {
	c.taskAnalysis = a
}

func (c *SharedContext) setWorkflowPlan(p *plan.WorkflowPlan) {
	c.workflowPlan = p
}

// recordStep stores the output of a step, replacing an earlier output of
// the same step.
func (c *SharedContext) recordStep(stepID, output string) {
	if _, seen := c.stepResults[stepID]; !seen {
		c.stepOrder = append(c.stepOrder, stepID)
	}
	c.stepResults[stepID] = output
}

func (c *SharedContext) setExecution(final string, halt flow.Halt, warnings []string) {
	c.finalResult = final
	c.halt = halt
	c.warnings = warnings
}

// lastOutput returns the output of the most recently recorded step.
func (c *SharedContext) lastOutput() string {
	if len(c.stepOrder) == 0 {
		return ""
	}
	return c.stepResults[c.stepOrder[len(c.stepOrder)-1]]
}

// Result is the aggregate of a run.
type Result struct {
	RunID        string             `json:"run_id" yaml:"run_id"`
	UserInput    string             `json:"user_input" yaml:"user_input"`
	TaskAnalysis *plan.TaskAnalysis `json:"task_analysis" yaml:"task_analysis"`
	WorkflowPlan *plan.WorkflowPlan `json:"workflow_plan" yaml:"workflow_plan"`
	StepResults  map[string]string  `json:"step_results" yaml:"step_results"`
	// StepOrder lists executed step ids in execution order.
	StepOrder   []string `json:"step_order" yaml:"step_order"`
	FinalResult string   `json:"final_result" yaml:"final_result"`
	Phase       Phase    `json:"phase" yaml:"phase"`
	// Halt tells why the graph walk stopped; empty when it never started.
	Halt     flow.Halt `json:"halt,omitempty" yaml:"halt,omitempty"`
	Warnings []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Result copies the current state into an aggregate.
func (c *SharedContext) Result() *Result {
	return &Result{
		RunID:        c.RunID,
		UserInput:    c.UserInput,
		TaskAnalysis: c.taskAnalysis,
		WorkflowPlan: c.workflowPlan,
		StepResults:  maps.Clone(c.stepResults),
		StepOrder:    slices.Clone(c.stepOrder),
		FinalResult:  c.finalResult,
		Phase:        c.phase,
		Halt:         c.halt,
		Warnings:     slices.Clone(c.warnings),
	}
}
