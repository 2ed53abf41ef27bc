package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

func TestPoolRunsTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPool(logger.Nop(), Options{Concurrency: 2, QueueSize: 8})
	p.Start(ctx)

	var ran int32
	for i := 0; i < 5; i++ {
		ok := p.Submit("count", uuid.New(), func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		})
		if !ok {
			t.Fatalf("Submit: task %d dropped", i)
		}
	}
	p.Close()
	if got := atomic.LoadInt32(&ran); got != 5 {
		t.Fatalf("expected 5 tasks to run, got %d", got)
	}
}

func TestPoolDropsWhenFull(t *testing.T) {
	// Not started, so nothing drains the queue.
	p := NewPool(logger.Nop(), Options{Concurrency: 1, QueueSize: 1})
	noop := func(ctx context.Context) error { return nil }
	if !p.Submit("first", uuid.Nil, noop) {
		t.Fatalf("Submit: first task should be queued")
	}
	if p.Submit("second", uuid.Nil, noop) {
		t.Fatalf("Submit: second task should be dropped")
	}
}

func TestPoolSubmitAfterClose(t *testing.T) {
	p := NewPool(logger.Nop(), Options{})
	p.Start(context.Background())
	p.Close()
	if p.Submit("late", uuid.Nil, func(ctx context.Context) error { return nil }) {
		t.Fatalf("Submit after Close: expected drop")
	}
}

func TestTaskTimeoutAndPanicAreContained(t *testing.T) {
	in := Inline{Timeout: 20 * time.Millisecond}
	start := time.Now()
	in.Submit("slow", uuid.Nil, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if time.Since(start) > time.Second {
		t.Fatalf("timeout not applied")
	}
	in.Submit("boom", uuid.Nil, func(ctx context.Context) error { panic("boom") })
	in.Submit("fail", uuid.Nil, func(ctx context.Context) error { return errors.New("nope") })
}
