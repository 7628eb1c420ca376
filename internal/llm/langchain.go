package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rahul/planweave/internal/core"
	"github.com/tmc/langchaingo/llms"
)

// Recorder receives every exchange with the model, failed ones included.
type Recorder interface {
	LogLLM(ctx context.Context, messages []Message, response string, err error)
}

// Model adapts a langchaingo llms.Model to Completer.
type Model struct {
	model    llms.Model
	timeout  time.Duration
	callOpts []llms.CallOption
	recorder Recorder
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithCallTimeout bounds each completion call. Zero disables the bound.
func WithCallTimeout(d time.Duration) ModelOption {
	return func(m *Model) { m.timeout = d }
}

// WithSampling sets temperature and top_p on every call. Zero values are
// left to the provider.
func WithSampling(temperature, topP float64) ModelOption {
	return func(m *Model) {
		if temperature > 0 {
			m.callOpts = append(m.callOpts, llms.WithTemperature(temperature))
		}
		if topP > 0 {
			m.callOpts = append(m.callOpts, llms.WithTopP(topP))
		}
	}
}

// WithRecorder registers a transcript recorder.
func WithRecorder(r Recorder) ModelOption {
	return func(m *Model) { m.recorder = r }
}

// NewModel wraps model.
func NewModel(model llms.Model, opts ...ModelOption) *Model {
	m := &Model{model: model}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Complete sends messages and returns the first choice. Deadline overruns
// become timeout errors, every other failure a retryable transport error.
func (m *Model) Complete(ctx context.Context, messages []Message) (string, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	resp, err := m.model.GenerateContent(ctx, toMessageContent(messages), m.callOpts...)
	text, err := firstChoice(ctx, resp, err)
	if m.recorder != nil {
		m.recorder.LogLLM(ctx, messages, text, err)
	}
	return text, err
}

func firstChoice(ctx context.Context, resp *llms.ContentResponse, err error) (string, error) {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", core.ErrTimeout("completion call timed out").WithCause(err)
		}
		return "", core.ErrTransport("completion call failed").WithCause(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		empty := core.ErrTransport("completion returned no choices")
		empty.Code = core.CodeEmptyCompletion
		return "", empty
	}
	return resp.Choices[0].Content, nil
}

func toMessageContent(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		if msg.Role == RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		out = append(out, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}
	return out
}

// Prompt flattens messages into one string for logs.
func Prompt(messages []Message) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s] %s", msg.Role, msg.Content)
	}
	return b.String()
}
