package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state struct {
	log []string
}

// recorder appends its name to the state and returns a fixed action.
type recorder struct {
	name    string
	action  Action
	execErr error
}

func (r recorder) Prepare(_ context.Context, s *state) (string, error) {
	return r.name, nil
}

func (r recorder) Execute(_ context.Context, prep string) (string, error) {
	if r.execErr != nil {
		return "", r.execErr
	}
	return "ran " + prep, nil
}

func (r recorder) Post(_ context.Context, s *state, _ string, res string) (Action, error) {
	s.log = append(s.log, res)
	return r.action, nil
}

func node(name string, action Action) *Node[*state] {
	return NewNode[*state, string, string](name, recorder{name: name, action: action})
}

func TestFlow_LinearDefaultChain(t *testing.T) {
	a, b, c := node("a", DefaultAction), node("b", DefaultAction), node("c", DefaultAction)
	a.Then(b).Then(c)

	f := New[*state]()
	f.Start(a)

	s := &state{}
	trace, err := f.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"ran a", "ran b", "ran c"}, s.log)
	assert.Equal(t, []string{"a", "b", "c"}, trace.Path)
	assert.Equal(t, HaltCompleted, trace.Halt)
}

func TestFlow_ActionSelectsSuccessor(t *testing.T) {
	a := node("a", "right")
	left, right := node("left", End), node("right", End)
	a.Link("left", left)
	a.Link("right", right)

	f := New[*state]()
	f.Start(a)

	s := &state{}
	trace, err := f.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "right"}, trace.Path)
}

func TestFlow_UnknownActionEnds(t *testing.T) {
	a := node("a", "missing")
	a.Then(node("b", End))

	f := New[*state]()
	f.Start(a)

	trace, err := f.Run(context.Background(), &state{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, trace.Path)
	assert.Equal(t, Action("missing"), trace.LastAction)
	assert.Equal(t, HaltCompleted, trace.Halt)
}

func TestFlow_NoEntryIsNoop(t *testing.T) {
	f := New[*state]()
	assert.False(t, f.HasEntry())

	s := &state{}
	trace, err := f.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, trace.Path)
	assert.Empty(t, s.log)
	assert.Equal(t, HaltNoEntry, trace.Halt)
}

func TestFlow_CycleVisitsEachNodeOnce(t *testing.T) {
	a, b := node("a", DefaultAction), node("b", DefaultAction)
	a.Then(b).Then(a)

	var halted Trace
	f := New[*state](WithHaltHook(func(_ context.Context, tr Trace) { halted = tr }))
	f.Start(a)

	s := &state{}
	trace, err := f.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, trace.Path)
	assert.Equal(t, HaltRevisit, trace.Halt)
	assert.Equal(t, "a", trace.Revisited)
	assert.Equal(t, trace, halted)
}

func TestFlow_SelfLoop(t *testing.T) {
	a := node("a", DefaultAction)
	a.Then(a)

	f := New[*state]()
	f.Start(a)

	trace, err := f.Run(context.Background(), &state{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, trace.Path)
	assert.Equal(t, HaltRevisit, trace.Halt)
}

func TestFlow_MaxSteps(t *testing.T) {
	a, b, c := node("a", DefaultAction), node("b", DefaultAction), node("c", DefaultAction)
	a.Then(b).Then(c)

	f := New[*state](WithMaxSteps(2))
	f.Start(a)

	trace, err := f.Run(context.Background(), &state{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, trace.Path)
	assert.Equal(t, HaltStepLimit, trace.Halt)
}

func TestFlow_NodeErrorStopsWalk(t *testing.T) {
	boom := errors.New("boom")
	a := node("a", DefaultAction)
	b := NewNode[*state, string, string]("b", recorder{name: "b", execErr: boom})
	a.Then(b).Then(node("c", End))

	f := New[*state]()
	f.Start(a)

	s := &state{}
	trace, err := f.Run(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "b", nodeErr.Node)
	assert.Equal(t, PhaseExecute, nodeErr.Phase)
	assert.Equal(t, []string{"a", "b"}, trace.Path)
	assert.Equal(t, HaltFailed, trace.Halt)
	assert.Equal(t, []string{"ran a"}, s.log, "post of the failing node never ran")
}

func TestFlow_CanceledContext(t *testing.T) {
	a := node("a", End)
	f := New[*state]()
	f.Start(a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trace, err := f.Run(ctx, &state{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, HaltCanceled, trace.Halt)
	assert.Empty(t, trace.Path)
}

func TestFlow_VisitHook(t *testing.T) {
	a, b := node("a", DefaultAction), node("b", End)
	a.Then(b)

	var visits []string
	f := New[*state](WithVisitHook(func(_ context.Context, name string, step int) {
		visits = append(visits, name)
		assert.Equal(t, len(visits), step)
	}))
	f.Start(a)

	_, err := f.Run(context.Background(), &state{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, visits)
}

func TestNode_LinkReplaces(t *testing.T) {
	a, b, c := node("a", End), node("b", End), node("c", End)
	a.Then(b)
	a.Then(c)

	next, ok := a.Successor(DefaultAction)
	require.True(t, ok)
	assert.Equal(t, "c", next.Name())

	_, ok = a.Successor(End)
	assert.False(t, ok)
}
