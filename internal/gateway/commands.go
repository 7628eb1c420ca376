package gateway

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rahul/planweave/internal/agent"
	"github.com/rahul/planweave/internal/core"
	"github.com/rahul/planweave/internal/observability"
	"github.com/rahul/planweave/internal/store"
)

const helpText = `Send any task and I will analyze it, plan a workflow and run it.

Commands:
/schedule <seconds> <task>  repeat a task (minimum 60 seconds, 0 runs once)
/tasks                      list scheduled tasks
/cancel <id>                remove one scheduled task
/clear                      remove all scheduled tasks
/help                       show this message`

// TaskStore is the part of store.TaskStore chat commands use.
type TaskStore interface {
	AddTask(ctx context.Context, chatID, request string, interval time.Duration) (int64, error)
	ListTasks(ctx context.Context, chatID string) ([]store.ScheduledTask, error)
	DeleteTask(ctx context.Context, chatID string, id int64) error
	ClearTasks(ctx context.Context, chatID string) (int64, error)
}

// Handler turns an incoming chat message into a reply. It is shared by all
// platforms.
type Handler struct {
	Runner agent.Runner
	Tasks  TaskStore

	logger *observability.Logger
	policy *bluemonday.Policy
}

// NewHandler builds a Handler. tasks may be nil, which disables the
// scheduling commands.
func NewHandler(runner agent.Runner, tasks TaskStore, logger *observability.Logger) *Handler {
	if logger == nil {
		logger = observability.NewNop()
	}
	return &Handler{
		Runner: runner,
		Tasks:  tasks,
		logger: logger,
		policy: bluemonday.StrictPolicy(),
	}
}

// Handle processes text sent in chatID and returns the reply.
func (h *Handler) Handle(ctx context.Context, chatID, text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return h.run(ctx, text)
	}

	cmd, args, _ := strings.Cut(text, " ")
	// telegram appends the bot name in groups: /help@planweave_bot
	cmd, _, _ = strings.Cut(cmd, "@")
	args = strings.TrimSpace(args)

	switch strings.ToLower(cmd) {
	case "/start", "/help":
		return helpText
	case "/schedule":
		return h.schedule(ctx, chatID, args)
	case "/tasks":
		return h.list(ctx, chatID)
	case "/cancel":
		return h.cancel(ctx, chatID, args)
	case "/clear":
		return h.clear(ctx, chatID)
	default:
		return fmt.Sprintf("Unknown command %s. Send /help for the list.", cmd)
	}
}

func (h *Handler) run(ctx context.Context, input string) string {
	if input == "" {
		return "Send a task to plan, or /help."
	}
	res, err := h.Runner.Run(ctx, input)
	if err != nil {
		h.logger.Slog().ErrorContext(ctx, "chat run failed", "error", err)
		reply := "I could not finish this task: " + userMessage(err)
		if res != nil && len(res.StepOrder) > 0 {
			reply += "\n\nPartial result:\n" + h.Sanitize(agent.Summarize(res))
		}
		return reply
	}
	return h.Sanitize(agent.Summarize(res))
}

// maxScheduleSeconds is the largest interval a time.Duration can hold.
const maxScheduleSeconds = math.MaxInt64 / int64(time.Second)

func (h *Handler) schedule(ctx context.Context, chatID, args string) string {
	if h.Tasks == nil {
		return "Scheduling is not available."
	}
	secs, request, _ := strings.Cut(args, " ")
	n, err := strconv.ParseInt(secs, 10, 64)
	request = strings.TrimSpace(request)
	if err != nil || n < 0 || n > maxScheduleSeconds || request == "" {
		return "Usage: /schedule <seconds> <task>"
	}

	id, err := h.Tasks.AddTask(ctx, chatID, request, time.Duration(n)*time.Second)
	if err != nil {
		return "Could not schedule: " + userMessage(err)
	}
	if n == 0 {
		return fmt.Sprintf("Task %d scheduled to run once.", id)
	}
	return fmt.Sprintf("Task %d scheduled every %s.", id, time.Duration(n)*time.Second)
}

func (h *Handler) list(ctx context.Context, chatID string) string {
	if h.Tasks == nil {
		return "Scheduling is not available."
	}
	tasks, err := h.Tasks.ListTasks(ctx, chatID)
	if err != nil {
		return "Could not list tasks: " + userMessage(err)
	}
	if len(tasks) == 0 {
		return "No scheduled tasks."
	}

	var b strings.Builder
	b.WriteString("Scheduled tasks:")
	for _, t := range tasks {
		every := "once"
		if t.Interval > 0 {
			every = "every " + t.Interval.String()
		}
		fmt.Fprintf(&b, "\n%d. %s (%s)", t.ID, t.Request, every)
	}
	return b.String()
}

func (h *Handler) cancel(ctx context.Context, chatID, args string) string {
	if h.Tasks == nil {
		return "Scheduling is not available."
	}
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return "Usage: /cancel <id>"
	}
	if err := h.Tasks.DeleteTask(ctx, chatID, id); err != nil {
		return "Could not cancel: " + userMessage(err)
	}
	return fmt.Sprintf("Task %d cancelled.", id)
}

func (h *Handler) clear(ctx context.Context, chatID string) string {
	if h.Tasks == nil {
		return "Scheduling is not available."
	}
	n, err := h.Tasks.ClearTasks(ctx, chatID)
	if err != nil {
		return "Could not clear tasks: " + userMessage(err)
	}
	return fmt.Sprintf("Removed %d scheduled task(s).", n)
}

// Sanitize strips markup from model output before it is posted to a chat.
func (h *Handler) Sanitize(s string) string {
	return html.UnescapeString(h.policy.Sanitize(s))
}

func userMessage(err error) string {
	var de *core.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
