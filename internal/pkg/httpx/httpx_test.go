package httpx

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"503", &StatusError{Service: "ollama", Status: 503}, true},
		{"429", fmt.Errorf("wrapped: %w", &StatusError{Status: 429}), true},
		{"400", &StatusError{Status: 400}, false},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Fatalf("%s: IsRetryableError=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestBackoffIsBounded(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		d := Backoff(attempt, 100*time.Millisecond, time.Second)
		if d > 1200*time.Millisecond {
			t.Fatalf("attempt %d: backoff %v exceeds max plus jitter", attempt, d)
		}
	}
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); err == nil {
		t.Fatalf("expected context error")
	}
}
