// Package chat persists the support-chat transcript. History is
// session-scoped: it lives in the in-memory store and is gone when the
// process exits, matching the web client's sessionStorage behavior.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/parampare/storefront/internal/store"
)

// Role of a chat message author.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Message is one chat transcript entry.
type Message struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// History reads and writes the chat transcript.
type History struct {
	store store.Store
}

// NewHistory creates a chat history over the given (session-scoped) store.
func NewHistory(st store.Store) *History {
	return &History{store: st}
}

// Messages returns the transcript in order.
func (h *History) Messages(ctx context.Context) ([]Message, error) {
	msgs := []Message{}
	if err := store.GetOr(ctx, h.store, store.KeyChatHistory, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Append adds a message to the transcript.
func (h *History) Append(ctx context.Context, role, text string) error {
	msgs, err := h.Messages(ctx)
	if err != nil {
		return err
	}
	msgs = append(msgs, Message{Role: role, Text: text, At: time.Now().UTC()})
	return h.store.Set(ctx, store.KeyChatHistory, msgs)
}

// Seed writes the opening greeting if the transcript is empty. userName may
// be "" for guests.
func (h *History) Seed(ctx context.Context, userName string) error {
	msgs, err := h.Messages(ctx)
	if err != nil {
		return err
	}
	if len(msgs) > 0 {
		return nil
	}

	greeting := "Namaste! How can I help you today?"
	if userName != "" {
		greeting = fmt.Sprintf("Namaste %s! How can I help you today?", userName)
	}
	return h.Append(ctx, RoleBot, greeting)
}

// Clear drops the transcript.
func (h *History) Clear(ctx context.Context) error {
	return h.store.Delete(ctx, store.KeyChatHistory)
}
