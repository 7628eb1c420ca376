// Package gateway connects chat platforms to the planning pipeline.
package gateway

import (
	"context"
	"strings"

	"github.com/rahul/planweave/internal/core"
)

// Messenger defines the interface for communication gateways (Telegram, Discord, etc.)
type Messenger interface {
	// Start listens for messages until ctx is canceled or Stop is called.
	Start(ctx context.Context) error
	// Send sends a message to a specific chat
	Send(ctx context.Context, chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}

// Multi fans Send out to the messenger that owns a chat. Chat ids are
// prefixed with the platform name ("telegram:123").
type Multi map[string]Messenger

func (m Multi) Send(ctx context.Context, chatID, text string) error {
	platform, id, ok := strings.Cut(chatID, ":")
	if !ok {
		return core.ErrNotFound("chat", chatID)
	}
	msgr, found := m[platform]
	if !found {
		return core.ErrNotFound("chat", chatID)
	}
	return msgr.Send(ctx, id, text)
}

// chunk splits text into pieces of at most limit runes, preferring line
// breaks.
func chunk(text string, limit int) []string {
	r := []rune(text)
	var parts []string
	for len(r) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if r[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, string(r[:cut]))
		r = r[cut:]
	}
	if len(r) > 0 || len(parts) == 0 {
		parts = append(parts, string(r))
	}
	return parts
}
