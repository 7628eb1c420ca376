package observability

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rahul/planweave/internal/llm"
	"golang.org/x/term"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeAnalysis    EventType = "analysis"
	EventTypePlan        EventType = "plan"
	EventTypeStep        EventType = "step"
	EventTypeFallback    EventType = "fallback"
	EventTypeLLM         EventType = "llm"
	EventTypePolicyCheck EventType = "policy_check"
	EventTypePhase       EventType = "phase"
	EventTypeHeartbeat   EventType = "heartbeat"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType  `json:"type"`
	RunID     string     `json:"run_id,omitempty"`
	StepID    string     `json:"step_id,omitempty"`
	Level     slog.Level `json:"-"`
	Message   string     `json:"message,omitempty"`
	Data      any        `json:"data,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Config configures the logger.
type Config struct {
	Level  string
	Format string // auto, text, json
	Output io.Writer
	// TranscriptPath receives llm events as JSON lines. Empty disables it.
	TranscriptPath string
	// MaxTranscriptSize triggers rotation to <path>.old. Zero means 10MB.
	MaxTranscriptSize int64
}

// Logger handles structured logging.
type Logger struct {
	slog           *slog.Logger
	transcriptPath string
	maxSize        int64
	mu             sync.Mutex
}

func NewLogger(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.MaxTranscriptSize <= 0 {
		cfg.MaxTranscriptSize = 10 * 1024 * 1024 // 10MB
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(cfg.Output, opts)
	case "text":
		handler = slog.NewTextHandler(cfg.Output, opts)
	default: // auto
		if isTerminal(cfg.Output) {
			handler = slog.NewTextHandler(cfg.Output, opts)
		} else {
			handler = slog.NewJSONHandler(cfg.Output, opts)
		}
	}

	return &Logger{
		slog:           slog.New(handler),
		transcriptPath: cfg.TranscriptPath,
		maxSize:        cfg.MaxTranscriptSize,
	}
}

// NewNop creates a logger that drops everything.
func NewNop() *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	switch f := w.(type) {
	case *os.File:
		return term.IsTerminal(int(f.Fd()))
	case *termWriter:
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
	return false
}

// Slog exposes the underlying slog logger.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

type runIDKey struct{}

// WithRunID tags ctx with a run id picked up by every event logged under it.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFrom returns the run id carried by ctx.
func RunIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Log emits a structured event. LLM events also go to the transcript file.
func (l *Logger) Log(ctx context.Context, evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	if evt.RunID == "" {
		evt.RunID = RunIDFrom(ctx)
	}
	msg := evt.Message
	if msg == "" {
		msg = string(evt.Type)
	}

	attrs := []slog.Attr{slog.String("type", string(evt.Type))}
	if evt.RunID != "" {
		attrs = append(attrs, slog.String("run_id", evt.RunID))
	}
	if evt.StepID != "" {
		attrs = append(attrs, slog.String("step_id", evt.StepID))
	}
	if evt.Data != nil && evt.Type != EventTypeLLM {
		attrs = append(attrs, slog.Any("data", evt.Data))
	}
	l.slog.LogAttrs(ctx, evt.Level, msg, attrs...)

	if evt.Type == EventTypeLLM && l.transcriptPath != "" {
		data, err := json.Marshal(evt)
		if err != nil {
			l.slog.Error("failed to marshal llm event", "error", err)
			return
		}
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.transcriptPath), 0755); err != nil {
		l.slog.Error("failed to create log directory", "error", err)
		return
	}

	info, err := os.Stat(l.transcriptPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.transcriptPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		l.slog.Error("failed to open transcript file", "error", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		l.slog.Error("failed to write transcript file", "error", err)
	}
}

func (l *Logger) rotateLogs() {
	// keep one .old generation
	oldPath := l.transcriptPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.transcriptPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPhase(ctx context.Context, phase string) {
	l.Log(ctx, Event{
		Type:    EventTypePhase,
		Level:   slog.LevelDebug,
		Message: "phase " + phase,
		Data:    map[string]string{"phase": phase},
	})
}

func (l *Logger) LogAnalysis(ctx context.Context, taskType, complexity string, steps int) {
	l.Log(ctx, Event{
		Type:    EventTypeAnalysis,
		Level:   slog.LevelInfo,
		Message: "task analyzed",
		Data: map[string]any{
			"task_type":      taskType,
			"complexity":     complexity,
			"required_steps": steps,
		},
	})
}

func (l *Logger) LogPlan(ctx context.Context, workflow string, steps int, start string) {
	l.Log(ctx, Event{
		Type:    EventTypePlan,
		Level:   slog.LevelInfo,
		Message: "workflow planned",
		Data: map[string]any{
			"workflow_name": workflow,
			"steps":         steps,
			"start_step":    start,
		},
	})
}

func (l *Logger) LogStep(ctx context.Context, stepID, kind string, duration time.Duration) {
	l.Log(ctx, Event{
		Type:    EventTypeStep,
		StepID:  stepID,
		Level:   slog.LevelInfo,
		Message: "step executed",
		Data: map[string]any{
			"type":        kind,
			"duration_ms": duration.Milliseconds(),
		},
	})
}

// LogFallback records that a response could not be used and a default
// structure replaced it.
func (l *Logger) LogFallback(ctx context.Context, stage string, err error) {
	l.Log(ctx, Event{
		Type:    EventTypeFallback,
		Level:   slog.LevelWarn,
		Message: "unusable " + stage + " response, using fallback",
		Data:    map[string]string{"stage": stage, "error": errString(err)},
	})
}

func (l *Logger) LogWarn(ctx context.Context, evtType EventType, msg string, data any) {
	l.Log(ctx, Event{Type: evtType, Level: slog.LevelWarn, Message: msg, Data: data})
}

func (l *Logger) LogPolicy(ctx context.Context, stepID string, allowed bool, reason string) {
	level := slog.LevelDebug
	if !allowed {
		level = slog.LevelWarn
	}
	l.Log(ctx, Event{
		Type:    EventTypePolicyCheck,
		StepID:  stepID,
		Level:   level,
		Message: "policy check",
		Data:    map[string]any{"allowed": allowed, "reason": reason},
	})
}

func (l *Logger) LogHeartbeat(ctx context.Context) {
	l.Log(ctx, Event{
		Type:  EventTypeHeartbeat,
		Level: slog.LevelDebug,
		Data:  map[string]string{"status": "alive"},
	})
}

// LogLLM records one completion exchange. It satisfies llm.Recorder.
func (l *Logger) LogLLM(ctx context.Context, messages []llm.Message, response string, err error) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
	}
	l.Log(ctx, Event{
		Type:    EventTypeLLM,
		Level:   level,
		Message: "completion",
		Data: map[string]any{
			"prompt":   messages,
			"response": response,
			"error":    errString(err),
		},
	})
	if err != nil {
		l.slog.LogAttrs(ctx, level, "completion failed",
			slog.String("run_id", RunIDFrom(ctx)), slog.String("error", err.Error()))
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
