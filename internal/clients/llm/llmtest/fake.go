// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"

	"github.com/yungbote/bytesolver-backend/internal/clients/llm"
)

type Call struct {
	System   string
	Messages []llm.Message
	Stream   bool
}

// Fake replies with Replies in order (repeating the last one), or fails with Err.
type Fake struct {
	mu      sync.Mutex
	Replies []string
	Err     error
	// Chunk splits streamed replies into pieces of this many bytes.
	Chunk int
	calls []Call
}

func New(replies ...string) *Fake { return &Fake{Replies: replies} }

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *Fake) next(system string, messages []llm.Message, stream bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{System: system, Messages: append([]llm.Message(nil), messages...), Stream: stream})
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Replies) == 0 {
		return "", nil
	}
	idx := len(f.calls) - 1
	if idx >= len(f.Replies) {
		idx = len(f.Replies) - 1
	}
	return f.Replies[idx], nil
}

func (f *Fake) Complete(ctx context.Context, system string, messages []llm.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.next(system, messages, false)
}

func (f *Fake) Stream(ctx context.Context, system string, messages []llm.Message, onDelta func(string)) (string, error) {
	reply, err := f.next(system, messages, true)
	if err != nil {
		return "", err
	}
	size := f.Chunk
	if size <= 0 {
		size = 8
	}
	var full strings.Builder
	for i := 0; i < len(reply); i += size {
		if err := ctx.Err(); err != nil {
			return full.String(), err
		}
		end := i + size
		if end > len(reply) {
			end = len(reply)
		}
		full.WriteString(reply[i:end])
		if onDelta != nil {
			onDelta(reply[i:end])
		}
	}
	return full.String(), nil
}
