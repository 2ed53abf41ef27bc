package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yungbote/bytesolver-backend/internal/pkg/httpx"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

func TestOllamaStreamNDJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream || len(req.Messages) != 2 || req.Messages[0].Role != RoleSystem {
			t.Errorf("unexpected request: %+v", req)
		}
		for _, part := range []string{"Hel", "lo"} {
			fmt.Fprintf(w, `{"message":{"role":"assistant","content":%q},"done":false}`+"\n", part)
		}
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	}))
	defer srv.Close()

	c, err := NewOllamaClient(logger.Nop(), OllamaConfig{BaseURL: srv.URL, Model: "m"})
	if err != nil {
		t.Fatalf("NewOllamaClient: %v", err)
	}
	var deltas []string
	out, err := c.Stream(context.Background(), "sys", []Message{{Role: RoleUser, Content: "hi"}}, func(d string) {
		deltas = append(deltas, d)
	})
	if err != nil || out != "Hello" || len(deltas) != 2 {
		t.Fatalf("Stream: out=%q deltas=%v err=%v", out, deltas, err)
	}
}

func TestOpenAIStreamSSE(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hi \"}}]}\n\n")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"there\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(logger.Nop(), OpenAIConfig{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	out, err := c.Stream(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}}, nil)
	if err != nil || out != "Hi there" {
		t.Fatalf("Stream: out=%q err=%v", out, err)
	}
}

func TestOpenAIRetriesRetryableStatus(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer srv.Close()

	c, _ := NewOpenAIClient(logger.Nop(), OpenAIConfig{BaseURL: srv.URL, APIKey: "k", MaxRetries: 2})
	out, err := c.Complete(context.Background(), "", []Message{{Role: RoleUser, Content: "x"}})
	if err != nil || out != "ok" || atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("Complete: out=%q err=%v hits=%d", out, err, hits)
	}
}

type stubClient struct {
	name    string
	reply   string
	err     error
	partial string
	calls   int
}

func (s *stubClient) Name() string { return s.name }

func (s *stubClient) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubClient) Stream(ctx context.Context, system string, messages []Message, onDelta func(string)) (string, error) {
	s.calls++
	if s.partial != "" {
		onDelta(s.partial)
		return s.partial, s.err
	}
	if s.err != nil {
		return "", s.err
	}
	onDelta(s.reply)
	return s.reply, nil
}

func TestRouterFallsBackOnRetryableError(t *testing.T) {
	primary := &stubClient{name: "a", err: &httpx.StatusError{Service: "a", Status: 503}}
	secondary := &stubClient{name: "b", reply: "from b"}
	r := NewRouter(logger.Nop(), primary, secondary)

	out, err := r.Complete(context.Background(), "", nil)
	if err != nil || out != "from b" || secondary.calls != 1 {
		t.Fatalf("Complete: out=%q err=%v", out, err)
	}
}

func TestRouterDoesNotFallBackOnClientError(t *testing.T) {
	primary := &stubClient{name: "a", err: &httpx.StatusError{Service: "a", Status: 400}}
	secondary := &stubClient{name: "b", reply: "from b"}
	r := NewRouter(logger.Nop(), primary, secondary)

	if _, err := r.Complete(context.Background(), "", nil); err == nil || secondary.calls != 0 {
		t.Fatalf("expected no fallback: err=%v calls=%d", err, secondary.calls)
	}
}

func TestRouterStreamNoFallbackAfterEmission(t *testing.T) {
	primary := &stubClient{name: "a", partial: "half", err: &httpx.StatusError{Service: "a", Status: 502}}
	secondary := &stubClient{name: "b", reply: "whole"}
	r := NewRouter(logger.Nop(), primary, secondary)

	var got strings.Builder
	out, err := r.Stream(context.Background(), "", nil, func(d string) { got.WriteString(d) })
	if err == nil || secondary.calls != 0 || got.String() != "half" || out != "half" {
		t.Fatalf("Stream: out=%q got=%q err=%v calls=%d", out, got.String(), err, secondary.calls)
	}
}

func TestRouterFallsBackWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	dead, _ := NewOllamaClient(logger.Nop(), OllamaConfig{BaseURL: url})
	secondary := &stubClient{name: "b", reply: "alive"}
	r := NewRouter(logger.Nop(), dead, secondary)

	out, err := r.Stream(context.Background(), "", []Message{{Role: RoleUser, Content: "x"}}, func(string) {})
	if err != nil || out != "alive" {
		t.Fatalf("Stream: out=%q err=%v", out, err)
	}
}

func TestRouterWithoutProviders(t *testing.T) {
	r := NewRouter(logger.Nop())
	if _, err := r.Complete(context.Background(), "", nil); !errors.Is(err, ErrNoProviders) {
		t.Fatalf("expected ErrNoProviders, got %v", err)
	}
}
