// Package store persists scheduled user requests. Plans and run results
// are never stored.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/rahul/planweave/internal/core"
)

// MinInterval is the shortest allowed repeat interval.
const MinInterval = 60 * time.Second

// ScheduledTask is a user request re-run on an interval. A zero interval
// means the task runs once and is then removed.
type ScheduledTask struct {
	ID       int64         `json:"id"`
	ChatID   string        `json:"chat_id"`
	Request  string        `json:"request"`
	Interval time.Duration `json:"interval"`
	LastRun  time.Time     `json:"last_run"`
}

type TaskStore struct {
	DB *sql.DB
}

func NewTaskStore(dbPath string) (*TaskStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	query := `CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id TEXT NOT NULL,
		request TEXT NOT NULL,
		interval_seconds INTEGER NOT NULL,
		last_run DATETIME,
		status TEXT DEFAULT 'active'
	);`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, err
	}

	return &TaskStore{DB: db}, nil
}

func (s *TaskStore) Close() error {
	return s.DB.Close()
}

// AddTask schedules request for chatID. A new task is due right away.
func (s *TaskStore) AddTask(ctx context.Context, chatID, request string, interval time.Duration) (int64, error) {
	if interval != 0 && interval < MinInterval {
		return 0, core.ErrValidation("INTERVAL_TOO_SHORT",
			fmt.Sprintf("minimum interval is %d seconds", int(MinInterval.Seconds())))
	}
	if request == "" {
		return 0, core.ErrValidation(core.CodeEmptyInput, "scheduled request is empty")
	}

	query := `INSERT INTO tasks (chat_id, request, interval_seconds, last_run) VALUES (?, ?, ?, datetime('now', '-365 days'))`
	res, err := s.DB.ExecContext(ctx, query, chatID, request, int64(interval.Seconds()))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetPendingTasks returns the active tasks whose interval has elapsed.
func (s *TaskStore) GetPendingTasks(ctx context.Context) ([]ScheduledTask, error) {
	query := `
		SELECT id, chat_id, request, interval_seconds, last_run
		FROM tasks
		WHERE status = 'active'
		AND (last_run IS NULL OR (julianday('now') - julianday(last_run)) * 86400 >= interval_seconds)
		ORDER BY id`
	return s.query(ctx, query)
}

// ListTasks returns the active tasks of chatID.
func (s *TaskStore) ListTasks(ctx context.Context, chatID string) ([]ScheduledTask, error) {
	query := `
		SELECT id, chat_id, request, interval_seconds, last_run
		FROM tasks
		WHERE status = 'active' AND chat_id = ?
		ORDER BY id`
	return s.query(ctx, query, chatID)
}

func (s *TaskStore) query(ctx context.Context, query string, args ...any) ([]ScheduledTask, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []ScheduledTask
	for rows.Next() {
		var t ScheduledTask
		var interval int64
		var lastRun any
		if err := rows.Scan(&t.ID, &t.ChatID, &t.Request, &interval, &lastRun); err != nil {
			return nil, err
		}
		t.Interval = time.Duration(interval) * time.Second
		t.LastRun = parseTime(lastRun)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// parseTime reads a DATETIME column, which the driver returns either as
// time.Time or as text depending on its content.
func parseTime(v any) time.Time {
	var text string
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return time.Time{}
	}
	for _, layout := range []string{time.DateTime, time.RFC3339Nano} {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (s *TaskStore) UpdateTaskLastRun(ctx context.Context, id int64) error {
	query := `UPDATE tasks SET last_run = datetime('now') WHERE id = ?`
	_, err := s.DB.ExecContext(ctx, query, id)
	return err
}

// DeleteTask removes one task of chatID.
func (s *TaskStore) DeleteTask(ctx context.Context, chatID string, id int64) error {
	query := `DELETE FROM tasks WHERE chat_id = ? AND id = ?`
	res, err := s.DB.ExecContext(ctx, query, chatID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound("task", fmt.Sprint(id))
	}
	return nil
}

// ClearTasks removes every task of chatID and returns how many there were.
func (s *TaskStore) ClearTasks(ctx context.Context, chatID string) (int64, error) {
	query := `DELETE FROM tasks WHERE chat_id = ?`
	res, err := s.DB.ExecContext(ctx, query, chatID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
