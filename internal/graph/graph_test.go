package graph

import (
	"testing"

	"github.com/rahul/planweave/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoStepPlan() *plan.WorkflowPlan {
	return &plan.WorkflowPlan{
		WorkflowName: "w",
		Steps: []plan.StepSpec{
			{StepID: "s1", Type: plan.KindDataProcessing, NextSteps: []string{"s2"}},
			{StepID: "s2", Type: plan.KindGeneric, NextSteps: []string{}},
		},
		StartStep: "s1",
	}
}

func TestBuild_TwoSteps(t *testing.T) {
	g := Build(twoStepPlan())

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"s1", "s2"}, g.Order)
	assert.Equal(t, "s1", g.Entry)
	assert.True(t, g.HasEntry())
	assert.Equal(t, []Edge{{From: "s1", To: "s2"}}, g.Edges())
	assert.Empty(t, g.Warnings)

	n, ok := g.Node("s1")
	require.True(t, ok)
	assert.Equal(t, "s1", n.ID())
	assert.Equal(t, []string{"s2"}, n.Successors)
}

func TestBuild_DropsDanglingReferences(t *testing.T) {
	p := &plan.WorkflowPlan{
		Steps: []plan.StepSpec{
			{StepID: "a", NextSteps: []string{"ghost", "b", "b"}},
			{StepID: "b", NextSteps: []string{"nowhere"}},
		},
		StartStep: "a",
	}

	g := Build(p)
	assert.Equal(t, []Edge{{From: "a", To: "b"}}, g.Edges())
	assert.Equal(t, []string{"b"}, g.Nodes["a"].Successors)
	assert.Empty(t, g.Nodes["b"].Successors)
	assert.Len(t, g.Warnings, 2)
}

func TestBuild_MissingStartStep(t *testing.T) {
	p := twoStepPlan()
	p.StartStep = "missing"

	g := Build(p)
	assert.False(t, g.HasEntry())
	assert.Equal(t, "", g.Entry)
	assert.Equal(t, 2, g.Len(), "nodes are still built")
	assert.NotEmpty(t, g.Warnings)
}

func TestBuild_DuplicateIDsFirstWins(t *testing.T) {
	p := &plan.WorkflowPlan{
		Steps: []plan.StepSpec{
			{StepID: "a", Name: "first", NextSteps: []string{"b"}},
			{StepID: "b"},
			{StepID: "a", Name: "second", NextSteps: []string{}},
			{StepID: ""},
		},
		StartStep: "a",
	}

	g := Build(p)
	assert.Equal(t, []string{"a", "b"}, g.Order)
	assert.Equal(t, "first", g.Nodes["a"].Spec.Name)
	assert.Equal(t, []Edge{{From: "a", To: "b"}}, g.Edges())
	assert.Len(t, g.Warnings, 2)
}

func TestBuild_Idempotent(t *testing.T) {
	p := &plan.WorkflowPlan{
		Steps: []plan.StepSpec{
			{StepID: "a", NextSteps: []string{"c", "b"}},
			{StepID: "b", NextSteps: []string{"c", "x"}},
			{StepID: "c", NextSteps: []string{"a"}},
		},
		StartStep: "a",
	}

	first := Build(p)
	second := Build(p)
	assert.Equal(t, first.Order, second.Order)
	assert.Equal(t, first.Edges(), second.Edges())
	assert.Equal(t, first.Entry, second.Entry)
	assert.Equal(t, first.Warnings, second.Warnings)
	assert.Equal(t, first, second)
}

func TestBuild_NilAndEmptyPlans(t *testing.T) {
	g := Build(nil)
	assert.False(t, g.HasEntry())
	assert.Zero(t, g.Len())

	g = Build(&plan.WorkflowPlan{})
	assert.False(t, g.HasEntry())
	assert.Empty(t, g.Edges())
}

func TestBuild_DoesNotMutatePlan(t *testing.T) {
	p := &plan.WorkflowPlan{
		Steps:     []plan.StepSpec{{StepID: "a", NextSteps: []string{"ghost"}}},
		StartStep: "a",
	}
	Build(p)
	assert.Equal(t, []string{"ghost"}, p.Steps[0].NextSteps)
}
