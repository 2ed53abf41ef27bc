package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

const (
	DefaultTimeout = 30 * time.Second

	maxOutputBytes = 1 << 20
	maxErrorOutput = 64 << 10
	waitDelay      = 2 * time.Second
)

// Output stream types carried in the "output" event.
const (
	StreamStdout = "stdout"
	StreamStderr = "stderr"
	StreamError  = "error"
	StreamInfo   = "info"
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrEmptyContent        = errors.New("no code to run")
	ErrBusy                = errors.New("too many programs are running, try again shortly")
)

// Emitter receives server events for one run. Implementations must be safe
// for concurrent use; stdout and stderr are delivered from separate goroutines.
type Emitter func(event string, data any)

type OutputEvent struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

type CompleteEvent struct {
	Success bool `json:"success"`
}

type ErrorEvent struct {
	ExitCode    int    `json:"exitCode"`
	ErrorOutput string `json:"errorOutput"`
	Language    string `json:"language"`
	Code        string `json:"code"`
}

type RunRequest struct {
	Content  string `json:"content"`
	Language string `json:"language"`
	Filename string `json:"filename"`
}

type Options struct {
	Timeout time.Duration
	// MaxProcesses caps concurrent runs server-wide; zero means unlimited.
	MaxProcesses int
	// TempDir is the parent of per-run directories; empty uses os.TempDir.
	TempDir string
}

type Runner struct {
	log      *logger.Logger
	timeout  time.Duration
	tempRoot string
	sem      *semaphore.Weighted
	lookPath func(string) (string, error)
}

func NewRunner(log *logger.Logger, opts Options) *Runner {
	r := &Runner{
		log:      log.With("component", "TerminalRunner"),
		timeout:  opts.Timeout,
		tempRoot: opts.TempDir,
		lookPath: exec.LookPath,
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if opts.MaxProcesses > 0 {
		r.sem = semaphore.NewWeighted(int64(opts.MaxProcesses))
	}
	return r
}

// Run is one executing program.
type Run struct {
	lang   Language
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	emit   Emitter
	cancel context.CancelFunc
	done   chan struct{}

	killed   atomic.Bool
	timedOut atomic.Bool

	mu        sync.Mutex
	written   int
	truncated bool
	stderr    strings.Builder
}

// Start launches req and streams its events to emit. Failures before the
// process exists are returned and nothing is emitted.
func (r *Runner) Start(ctx context.Context, req RunRequest, emit Emitter) (*Run, error) {
	lang, ok := LookupLanguage(req.Language)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, req.Language)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}
	if _, err := r.lookPath(lang.Binary); err != nil {
		return nil, fmt.Errorf("%s runtime not found, is %s installed?", lang.Name, lang.Binary)
	}
	if r.sem != nil && !r.sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	release := func() {
		if r.sem != nil {
			r.sem.Release(1)
		}
	}

	dir, err := os.MkdirTemp(r.tempRoot, "bytesolver-run-")
	if err != nil {
		release()
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	cleanup := func() {
		release()
		if err := os.RemoveAll(dir); err != nil {
			r.log.Warn("Run dir cleanup failed", "dir", dir, "error", err)
		}
	}

	file := sourceFile(lang, req.Filename)
	if err := os.WriteFile(filepath.Join(dir, file), []byte(req.Content), 0o600); err != nil {
		cleanup()
		return nil, fmt.Errorf("write source: %w", err)
	}

	cmd := exec.Command("sh", "-c", lang.Command(file))
	cmd.Dir = dir
	cmd.Env = runEnv(dir)
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	run := &Run{lang: lang, cmd: cmd, emit: emit, done: make(chan struct{})}
	cmd.Stdout = streamWriter{run: run, stream: StreamStdout}
	cmd.Stderr = streamWriter{run: run, stream: StreamStderr}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	run.stdin = stdin

	if err := cmd.Start(); err != nil {
		cleanup()
		return nil, fmt.Errorf("start %s: %w (is %s installed?)", lang.Name, err, lang.Binary)
	}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	run.cancel = cancel
	go func() {
		<-runCtx.Done()
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			run.timedOut.Store(true)
		}
		killProcessGroup(cmd)
	}()

	r.log.Debug("Run started", "language", lang.Name, "file", file, "pid", cmd.Process.Pid)
	go func() {
		defer close(run.done)
		defer cleanup()
		defer cancel()
		werr := cmd.Wait()
		run.finish(werr, req.Content, r.timeout)
	}()
	return run, nil
}

func (run *Run) finish(werr error, code string, timeout time.Duration) {
	if run.killed.Load() {
		return
	}
	if run.timedOut.Load() {
		run.emit("output", OutputEvent{Type: StreamError, Data: fmt.Sprintf("Execution timed out after %s", timeout)})
		run.emit("run:error", ErrorEvent{ExitCode: -1, ErrorOutput: run.errorOutput(), Language: run.lang.Name, Code: code})
		run.emit("run:complete", CompleteEvent{Success: false})
		return
	}
	if werr == nil {
		run.emit("run:complete", CompleteEvent{Success: true})
		return
	}
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(werr, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	run.emit("run:error", ErrorEvent{ExitCode: exitCode, ErrorOutput: run.errorOutput(), Language: run.lang.Name, Code: code})
	run.emit("run:complete", CompleteEvent{Success: false})
}

// Input relays one line to the program's stdin.
func (run *Run) Input(text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := io.WriteString(run.stdin, text)
	return err
}

// Kill stops the program and suppresses everything it would still emit.
func (run *Run) Kill() {
	run.killed.Store(true)
	killProcessGroup(run.cmd)
	run.cancel()
}

func (run *Run) Done() <-chan struct{} { return run.done }

func (run *Run) errorOutput() string {
	run.mu.Lock()
	defer run.mu.Unlock()
	return run.stderr.String()
}

type streamWriter struct {
	run    *Run
	stream string
}

func (w streamWriter) Write(p []byte) (int, error) {
	run := w.run
	if run.killed.Load() {
		return len(p), nil
	}
	run.mu.Lock()
	if w.stream == StreamStderr && run.stderr.Len() < maxErrorOutput {
		room := maxErrorOutput - run.stderr.Len()
		run.stderr.Write(p[:min(len(p), room)])
	}
	if run.truncated {
		run.mu.Unlock()
		return len(p), nil
	}
	chunk := p
	if run.written+len(chunk) > maxOutputBytes {
		chunk = chunk[:maxOutputBytes-run.written]
		run.truncated = true
	}
	run.written += len(chunk)
	truncatedNow := run.truncated
	run.mu.Unlock()

	if len(chunk) > 0 {
		run.emit("output", OutputEvent{Type: w.stream, Data: string(chunk)})
	}
	if truncatedNow && len(chunk) < len(p) {
		run.emit("output", OutputEvent{Type: StreamInfo, Data: "Output truncated"})
	}
	return len(p), nil
}

func runEnv(dir string) []string {
	env := []string{
		"HOME=" + dir,
		"TMPDIR=" + dir,
		"LANG=C.UTF-8",
		"PYTHONUNBUFFERED=1",
		"GOCACHE=" + filepath.Join(os.TempDir(), "bytesolver-gocache"),
		"npm_config_cache=" + filepath.Join(os.TempDir(), "bytesolver-npm"),
	}
	if p := os.Getenv("PATH"); p != "" {
		env = append(env, "PATH="+p)
	}
	return env
}
