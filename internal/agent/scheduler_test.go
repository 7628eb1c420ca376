package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rahul/planweave/internal/core"
	"github.com/rahul/planweave/internal/flow"
	"github.com/rahul/planweave/internal/plan"
	"github.com/rahul/planweave/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskStore struct {
	pending []store.ScheduledTask
	err     error
	updated []int64
	deleted []int64
}

func (f *fakeTaskStore) GetPendingTasks(context.Context) ([]store.ScheduledTask, error) {
	return f.pending, f.err
}

func (f *fakeTaskStore) UpdateTaskLastRun(_ context.Context, id int64) error {
	f.updated = append(f.updated, id)
	return nil
}

func (f *fakeTaskStore) DeleteTask(_ context.Context, _ string, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type sentMessage struct {
	chatID string
	text   string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *recordingNotifier) Send(_ context.Context, chatID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{chatID, text})
	return nil
}

type runnerFunc func(ctx context.Context, input string) (*Result, error)

func (f runnerFunc) Run(ctx context.Context, input string) (*Result, error) {
	return f(ctx, input)
}

func TestScheduler_PollRunsDueTasks(t *testing.T) {
	tasks := &fakeTaskStore{pending: []store.ScheduledTask{
		{ID: 1, ChatID: "100", Request: "daily digest", Interval: time.Hour},
		{ID: 2, ChatID: "200", Request: "remind me once"},
	}}
	notifier := &recordingNotifier{}

	var inputs []string
	runner := runnerFunc(func(_ context.Context, input string) (*Result, error) {
		inputs = append(inputs, input)
		return &Result{
			UserInput:    input,
			WorkflowPlan: &plan.WorkflowPlan{WorkflowName: "digest"},
			StepResults:  map[string]string{"s1": "done"},
			StepOrder:    []string{"s1"},
			FinalResult:  "done",
			Halt:         flow.HaltCompleted,
		}, nil
	})

	NewScheduler(runner, tasks, notifier, nil).poll(context.Background())

	assert.Equal(t, []string{"daily digest", "remind me once"}, inputs)
	assert.Equal(t, []int64{1, 2}, tasks.updated)
	assert.Equal(t, []int64{2}, tasks.deleted, "only the one-time task is removed")

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "100", notifier.sent[0].chatID)
	assert.Contains(t, notifier.sent[0].text, "Scheduled task output")
	assert.Contains(t, notifier.sent[0].text, "digest: 1 step(s) executed")
	assert.Contains(t, notifier.sent[0].text, "Result:\ndone")
}

func TestScheduler_RunFailureIsReported(t *testing.T) {
	tasks := &fakeTaskStore{pending: []store.ScheduledTask{{ID: 7, ChatID: "1", Request: "x", Interval: time.Hour}}}
	notifier := &recordingNotifier{}
	runner := runnerFunc(func(context.Context, string) (*Result, error) {
		return &Result{StepOrder: []string{}}, core.ErrTransport("completion call failed")
	})

	NewScheduler(runner, tasks, notifier, nil).poll(context.Background())

	assert.Equal(t, []int64{7}, tasks.updated)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0].text, "Scheduled request failed")
}

func TestScheduler_StoreErrorSkipsPoll(t *testing.T) {
	tasks := &fakeTaskStore{err: errors.New("database is locked")}
	called := false
	runner := runnerFunc(func(context.Context, string) (*Result, error) {
		called = true
		return nil, nil
	})

	NewScheduler(runner, tasks, nil, nil).poll(context.Background())
	assert.False(t, called)
}

func TestScheduler_StartStopsOnCancel(t *testing.T) {
	tasks := &fakeTaskStore{}
	s := NewScheduler(runnerFunc(func(context.Context, string) (*Result, error) { return nil, nil }), tasks, nil, nil)
	s.Interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSummarize(t *testing.T) {
	res := &Result{
		TaskAnalysis: &plan.TaskAnalysis{TaskType: "research", Complexity: plan.ComplexityMedium},
		WorkflowPlan: &plan.WorkflowPlan{WorkflowName: "w"},
		StepResults:  map[string]string{"a": "first", "b": "second"},
		StepOrder:    []string{"a", "b"},
		FinalResult:  "second",
		Halt:         flow.HaltCompleted,
		Warnings:     []string{"step a: next step \"x\" not found"},
	}

	out := Summarize(res)
	assert.Contains(t, out, "w: 2 step(s) executed, halt=completed")
	assert.Contains(t, out, "Task: research (medium)")
	assert.Contains(t, out, "1. [a] first")
	assert.Contains(t, out, "2. [b] second")
	assert.Contains(t, out, "warning: step a")
	assert.Contains(t, out, "Result:\nsecond")

	assert.Equal(t, "No result.", Summarize(nil))
}
