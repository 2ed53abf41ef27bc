// Package llm talks to chat-completion backends (Ollama, OpenAI-compatible)
// behind one Client interface.
package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client interface {
	// Complete returns the whole reply.
	Complete(ctx context.Context, system string, messages []Message) (string, error)
	// Stream calls onDelta for each text fragment and returns the full reply.
	Stream(ctx context.Context, system string, messages []Message, onDelta func(delta string)) (string, error)
	Name() string
}

var ErrNoProviders = errors.New("llm: no providers configured")

// withSystem prepends the system prompt when non-empty.
func withSystem(system string, messages []Message) []Message {
	out := make([]Message, 0, len(messages)+1)
	if system != "" {
		out = append(out, Message{Role: RoleSystem, Content: system})
	}
	return append(out, messages...)
}
