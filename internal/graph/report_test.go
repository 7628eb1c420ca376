package graph

import (
	"strings"
	"testing"

	"github.com/rahul/planweave/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	p := &plan.WorkflowPlan{
		WorkflowName: "report",
		Steps: []plan.StepSpec{
			{StepID: "a", Name: "collect", Type: plan.KindAPICall, NextSteps: []string{"b", "ghost"}},
			{StepID: "b", Name: "write", Type: plan.KindGeneric},
		},
		StartStep: "a",
	}

	r := Inspect(p)
	assert.Equal(t, "report", r.Workflow)
	assert.Equal(t, "a", r.Entry)
	require.Len(t, r.Nodes, 2)
	assert.Equal(t, NodeView{StepID: "a", Name: "collect", Type: plan.KindAPICall, Successors: []string{"b"}}, r.Nodes[0])
	assert.Equal(t, []Edge{{From: "a", To: "b"}}, r.Edges)
	assert.Len(t, r.Warnings, 1)
	require.Len(t, r.Problems, 1)
	assert.Contains(t, r.Problems[0], `unknown step "ghost"`)

	var b strings.Builder
	require.NoError(t, r.WriteText(&b))
	assert.Contains(t, b.String(), "entry: a")
	assert.Contains(t, b.String(), "  a [api_call] collect\n    -> b\n")
	assert.Contains(t, b.String(), "problem: ")
}

func TestInspect_NilPlan(t *testing.T) {
	r := Inspect(nil)
	assert.Empty(t, r.Entry)
	assert.Empty(t, r.Nodes)
	assert.Equal(t, []string{}, r.Problems)

	var b strings.Builder
	require.NoError(t, r.WriteText(&b))
	assert.Contains(t, b.String(), "entry: (none)")
}
