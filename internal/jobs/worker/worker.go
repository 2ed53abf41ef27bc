package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

// Task is a best-effort side effect. Its error is logged, never returned to
// the request that enqueued it.
type Task func(ctx context.Context) error

// Submitter accepts side effects without blocking the caller.
type Submitter interface {
	// Submit reports false when the task was dropped.
	Submit(name string, userID uuid.UUID, task Task) bool
}

const (
	DefaultConcurrency = 4
	DefaultQueueSize   = 256
	DefaultTaskTimeout = 10 * time.Second
)

type Options struct {
	Concurrency int
	QueueSize   int
	TaskTimeout time.Duration
}

type job struct {
	name   string
	userID uuid.UUID
	task   Task
}

// Pool runs submitted tasks on a fixed set of goroutines fed by a bounded
// channel.
type Pool struct {
	log     *logger.Logger
	queue   chan job
	timeout time.Duration
	workers int

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

func NewPool(baseLog *logger.Logger, opts Options) *Pool {
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = DefaultTaskTimeout
	}
	return &Pool{
		log:     baseLog.With("component", "SideEffectPool"),
		queue:   make(chan job, opts.QueueSize),
		timeout: opts.TaskTimeout,
		workers: opts.Concurrency,
	}
}

// Start launches the workers. They exit when ctx is cancelled or Close has
// drained the queue.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	p.log.Info("Starting side-effect pool", "concurrency", p.workers, "queue", cap(p.queue))
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runLoop(ctx, i+1)
	}
}

func (p *Pool) Submit(name string, userID uuid.UUID, task Task) bool {
	if task == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.Warn("Side effect dropped after shutdown", "effect", name, "user_id", userID)
		return false
	}
	select {
	case p.queue <- job{name: name, userID: userID, task: task}:
		return true
	default:
		p.log.Warn("Side effect dropped, queue full", "effect", name, "user_id", userID)
		return false
	}
}

// Close stops intake and waits for queued tasks to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) runLoop(ctx context.Context, workerID int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			p.log.Debug("Side-effect worker stopped", "worker_id", workerID)
			return
		case j, ok := <-p.queue:
			if !ok {
				return
			}
			// Tasks outlive the request that queued them, so they get a fresh
			// deadline rather than the request context.
			run(context.WithoutCancel(ctx), p.log, p.timeout, j)
		}
	}
}

func run(parent context.Context, log *logger.Logger, timeout time.Duration, j job) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			log.Error("Side effect panic", "effect", j.name, "user_id", j.userID, "panic", r)
		}
	}()
	if err := j.task(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn("Side effect timed out", "effect", j.name, "user_id", j.userID, "error", err)
			return
		}
		log.Warn("Side effect failed", "effect", j.name, "user_id", j.userID, "error", err)
	}
}

// Inline runs each task synchronously inside Submit. Tests use it so side
// effects are visible as soon as the request returns.
type Inline struct {
	Log     *logger.Logger
	Timeout time.Duration
}

func (in Inline) Submit(name string, userID uuid.UUID, task Task) bool {
	if task == nil {
		return false
	}
	log := in.Log
	if log == nil {
		log = logger.Nop()
	}
	timeout := in.Timeout
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	run(context.Background(), log, timeout, job{name: name, userID: userID, task: task})
	return true
}
