package gateway

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rahul/planweave/internal/agent"
	"github.com/rahul/planweave/internal/core"
	"github.com/rahul/planweave/internal/flow"
	"github.com/rahul/planweave/internal/plan"
	"github.com/rahul/planweave/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerFunc func(ctx context.Context, input string) (*agent.Result, error)

func (f runnerFunc) Run(ctx context.Context, input string) (*agent.Result, error) {
	return f(ctx, input)
}

func echoRunner(output string) runnerFunc {
	return func(_ context.Context, input string) (*agent.Result, error) {
		return &agent.Result{
			UserInput:    input,
			WorkflowPlan: &plan.WorkflowPlan{WorkflowName: "chat"},
			StepResults:  map[string]string{"s1": output},
			StepOrder:    []string{"s1"},
			FinalResult:  output,
			Halt:         flow.HaltCompleted,
		}, nil
	}
}

func newTestHandler(t *testing.T, runner agent.Runner) *Handler {
	t.Helper()
	tasks, err := store.NewTaskStore(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { tasks.Close() })
	return NewHandler(runner, tasks, nil)
}

func TestHandler_RunsPlainText(t *testing.T) {
	h := newTestHandler(t, echoRunner("<b>bold</b> & <script>alert(1)</script>done"))

	reply := h.Handle(context.Background(), "telegram:1", "plan my week")
	assert.Contains(t, reply, "chat: 1 step(s) executed")
	assert.Contains(t, reply, "bold & done")
	assert.NotContains(t, reply, "<b>")
	assert.NotContains(t, reply, "alert")
}

func TestHandler_RunFailure(t *testing.T) {
	h := newTestHandler(t, runnerFunc(func(context.Context, string) (*agent.Result, error) {
		return &agent.Result{
			StepResults: map[string]string{"s1": "half"},
			StepOrder:   []string{"s1"},
		}, core.ErrTransport("completion call failed")
	}))

	reply := h.Handle(context.Background(), "telegram:1", "task")
	assert.True(t, strings.HasPrefix(reply, "I could not finish this task: completion call failed"))
	assert.Contains(t, reply, "Partial result:")
	assert.Contains(t, reply, "[s1] half")
}

func TestHandler_ScheduleCommands(t *testing.T) {
	h := newTestHandler(t, echoRunner("x"))
	ctx := context.Background()

	assert.Equal(t, "Task 1 scheduled every 2m0s.", h.Handle(ctx, "telegram:1", "/schedule 120 check prices"))
	assert.Equal(t, "Task 2 scheduled to run once.", h.Handle(ctx, "telegram:1", "/schedule 0 ping me"))
	assert.Contains(t, h.Handle(ctx, "telegram:1", "/schedule 10 too fast"), "minimum interval is 60 seconds")
	assert.Equal(t, "Usage: /schedule <seconds> <task>", h.Handle(ctx, "telegram:1", "/schedule soon"))
	assert.Equal(t, "Usage: /schedule <seconds> <task>", h.Handle(ctx, "telegram:1", "/schedule 60"))
	assert.Equal(t, "Usage: /schedule <seconds> <task>", h.Handle(ctx, "telegram:1", "/schedule 9223372037 too long"))
	assert.Equal(t, "Usage: /schedule <seconds> <task>", h.Handle(ctx, "telegram:1", "/schedule -60 negative"))

	list := h.Handle(ctx, "telegram:1", "/tasks")
	assert.Contains(t, list, "1. check prices (every 2m0s)")
	assert.Contains(t, list, "2. ping me (once)")
	assert.Equal(t, "No scheduled tasks.", h.Handle(ctx, "discord:9", "/tasks"))

	assert.Equal(t, "Task 1 cancelled.", h.Handle(ctx, "telegram:1", "/cancel 1"))
	assert.Contains(t, h.Handle(ctx, "telegram:1", "/cancel 1"), "Could not cancel")
	assert.Equal(t, "Removed 1 scheduled task(s).", h.Handle(ctx, "telegram:1", "/clear"))
}

func TestHandler_HelpAndUnknown(t *testing.T) {
	h := NewHandler(echoRunner("x"), nil, nil)
	ctx := context.Background()

	assert.Equal(t, helpText, h.Handle(ctx, "c", "/help"))
	assert.Equal(t, helpText, h.Handle(ctx, "c", "/help@planweave_bot"))
	assert.Contains(t, h.Handle(ctx, "c", "/launch"), "Unknown command /launch")
	assert.Equal(t, "Scheduling is not available.", h.Handle(ctx, "c", "/tasks"))
	assert.Equal(t, "Send a task to plan, or /help.", h.Handle(ctx, "c", "   "))
}

type fakeMessenger struct {
	sent map[string]string
}

func (f *fakeMessenger) Start(context.Context) error { return nil }
func (f *fakeMessenger) Stop() error { return nil }
func (f *fakeMessenger) Send(_ context.Context, chatID, text string) error {
	f.sent[chatID] = text
	return nil
}

func TestMulti_RoutesByPlatform(t *testing.T) {
	tg := &fakeMessenger{sent: map[string]string{}}
	m := Multi{PlatformTelegram: tg}

	require.NoError(t, m.Send(context.Background(), "telegram:42", "hi"))
	assert.Equal(t, "hi", tg.sent["42"])

	err := m.Send(context.Background(), "discord:1", "hi")
	assert.Equal(t, core.ErrCatNotFound, core.CategoryOf(err))
	err = m.Send(context.Background(), "nochat", "hi")
	assert.Equal(t, core.ErrCatNotFound, core.CategoryOf(err))
}

func TestChunk(t *testing.T) {
	assert.Equal(t, []string{""}, chunk("", 10))
	assert.Equal(t, []string{"short"}, chunk("short", 10))
	assert.Equal(t, []string{"line one\n", "line two"}, chunk("line one\nline two", 12))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, chunk("abcdefghij", 4))
}
