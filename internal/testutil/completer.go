// Package testutil provides test doubles shared across packages.
package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rahul/planweave/internal/llm"
)

// ErrScriptExhausted is returned when no queued response is left and no
// handler is set.
var ErrScriptExhausted = errors.New("scripted completer: no response left")

// ScriptedCompleter returns queued responses in order, or asks Handler
// when the queue is empty. Every call is recorded.
type ScriptedCompleter struct {
	mu        sync.Mutex
	responses []Response
	calls     [][]llm.Message

	// Handler answers calls once the queue is drained.
	Handler func(ctx context.Context, messages []llm.Message) (string, error)
}

// Response is one scripted answer.
type Response struct {
	Text string
	Err  error
}

// NewScriptedCompleter queues texts as successful responses.
func NewScriptedCompleter(texts ...string) *ScriptedCompleter {
	c := &ScriptedCompleter{}
	for _, t := range texts {
		c.responses = append(c.responses, Response{Text: t})
	}
	return c
}

// Then queues a response.
func (c *ScriptedCompleter) Then(text string) *ScriptedCompleter {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, Response{Text: text})
	return c
}

// ThenFail queues an error.
func (c *ScriptedCompleter) ThenFail(err error) *ScriptedCompleter {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, Response{Err: err})
	return c
}

func (c *ScriptedCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, append([]llm.Message(nil), messages...))
	if len(c.responses) > 0 {
		r := c.responses[0]
		c.responses = c.responses[1:]
		c.mu.Unlock()
		return r.Text, r.Err
	}
	handler := c.Handler
	c.mu.Unlock()

	if handler != nil {
		return handler(ctx, messages)
	}
	return "", ErrScriptExhausted
}

// Calls returns the recorded calls.
func (c *ScriptedCompleter) Calls() [][]llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]llm.Message(nil), c.calls...)
}

// CallCount returns how many calls were made.
func (c *ScriptedCompleter) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// Prompt returns the concatenated message contents of call i.
func (c *ScriptedCompleter) Prompt(i int) string {
	calls := c.Calls()
	if i < 0 || i >= len(calls) {
		return ""
	}
	parts := make([]string, 0, len(calls[i]))
	for _, m := range calls[i] {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}
