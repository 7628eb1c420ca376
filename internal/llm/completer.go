// Package llm is the text-completion collaborator: an ordered list of
// user/assistant messages goes in, free text comes out.
package llm

import (
	"context"
)

// Role of a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// User builds a single user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Completer returns the completion for messages. Implementations must be
// safe for concurrent use when runs share them.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, messages []Message) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}
