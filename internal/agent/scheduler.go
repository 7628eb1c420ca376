package agent

import (
	"context"
	"time"

	"github.com/rahul/planweave/internal/observability"
	"github.com/rahul/planweave/internal/store"
)

// DefaultPollInterval is how often the scheduler looks for due requests.
const DefaultPollInterval = 30 * time.Second

// Notifier delivers text to a chat.
type Notifier interface {
	Send(ctx context.Context, chatID, text string) error
}

// TaskStore is the part of store.TaskStore the scheduler needs.
type TaskStore interface {
	GetPendingTasks(ctx context.Context) ([]store.ScheduledTask, error)
	UpdateTaskLastRun(ctx context.Context, id int64) error
	DeleteTask(ctx context.Context, chatID string, id int64) error
}

// Scheduler re-runs stored requests through a Runner when their interval
// has elapsed and posts the summary back to the originating chat.
type Scheduler struct {
	Runner   Runner
	Store    TaskStore
	Notifier Notifier
	Interval time.Duration

	logger *observability.Logger
}

func NewScheduler(runner Runner, tasks TaskStore, notifier Notifier, logger *observability.Logger) *Scheduler {
	if logger == nil {
		logger = observability.NewNop()
	}
	return &Scheduler{
		Runner:   runner,
		Store:    tasks,
		Notifier: notifier,
		Interval: DefaultPollInterval,
		logger:   logger,
	}
}

// Start polls until ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.logger.Slog().InfoContext(ctx, "task scheduler started", "interval", s.Interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *Scheduler) poll(ctx context.Context) {
	log := s.logger.Slog()

	tasks, err := s.Store.GetPendingTasks(ctx)
	if err != nil {
		log.ErrorContext(ctx, "polling scheduled tasks", "error", err)
		return
	}

	for _, t := range tasks {
		if ctx.Err() != nil {
			return
		}
		log.InfoContext(ctx, "running scheduled task", "task_id", t.ID, "chat_id", t.ChatID)

		// Mark the run first so a failing request is retried on the next
		// interval rather than on every poll.
		if err := s.Store.UpdateTaskLastRun(ctx, t.ID); err != nil {
			log.ErrorContext(ctx, "updating last run", "task_id", t.ID, "error", err)
		}
		if t.Interval == 0 {
			if err := s.Store.DeleteTask(ctx, t.ChatID, t.ID); err != nil {
				log.ErrorContext(ctx, "deleting one-time task", "task_id", t.ID, "error", err)
			}
		}

		res, err := s.Runner.Run(ctx, t.Request)
		text := "Scheduled task output\n\n"
		if err != nil {
			log.ErrorContext(ctx, "scheduled task failed", "task_id", t.ID, "error", err)
			text += "Scheduled request failed: " + err.Error()
			if res != nil {
				text += "\n\n" + Summarize(res)
			}
		} else {
			text += Summarize(res)
		}

		if s.Notifier == nil {
			continue
		}
		if err := s.Notifier.Send(ctx, t.ChatID, text); err != nil {
			log.ErrorContext(ctx, "sending scheduled output", "task_id", t.ID, "chat_id", t.ChatID, "error", err)
		}
	}
}
