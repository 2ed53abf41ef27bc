package terminal

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

type recorder struct {
	mu     sync.Mutex
	events []outFrame
}

func (r *recorder) emit(event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, outFrame{Event: event, Data: data})
}

func (r *recorder) snapshot() []outFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]outFrame(nil), r.events...)
}

func (r *recorder) stdout() string {
	var b strings.Builder
	for _, e := range r.snapshot() {
		if o, ok := e.Data.(OutputEvent); ok && o.Type == StreamStdout {
			b.WriteString(o.Data)
		}
	}
	return b.String()
}

func (r *recorder) last(event string) (any, bool) {
	ev := r.snapshot()
	for i := len(ev) - 1; i >= 0; i-- {
		if ev[i].Event == event {
			return ev[i].Data, true
		}
	}
	return nil, false
}

// wantFailedCompletion checks that a failed run ends with run:complete false.
func wantFailedCompletion(t *testing.T, rec *recorder) {
	t.Helper()
	ev := rec.snapshot()
	if len(ev) == 0 || ev[len(ev)-1].Event != "run:complete" {
		t.Fatalf("expected trailing run:complete, got %+v", ev)
	}
	if done := ev[len(ev)-1].Data.(CompleteEvent); done.Success {
		t.Fatalf("failed run reported success")
	}
}

func needBash(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
}

func newTestRunner(t *testing.T, opts Options) *Runner {
	t.Helper()
	if opts.TempDir == "" {
		opts.TempDir = t.TempDir()
	}
	return NewRunner(logger.Nop(), opts)
}

func waitDone(t *testing.T, run *Run) {
	t.Helper()
	select {
	case <-run.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("run did not finish")
	}
}

func TestRunnerStreamsOutputAndCompletes(t *testing.T) {
	needBash(t)
	rec := &recorder{}
	r := newTestRunner(t, Options{})
	run, err := r.Start(context.Background(), RunRequest{Language: "bash", Content: "echo hello\necho oops >&2"}, rec.emit)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, run)

	if !strings.Contains(rec.stdout(), "hello") {
		t.Fatalf("stdout = %q", rec.stdout())
	}
	data, ok := rec.last("run:complete")
	if !ok || !data.(CompleteEvent).Success {
		t.Fatalf("expected run:complete, got %+v", rec.snapshot())
	}
}

func TestRunnerReportsExitCode(t *testing.T) {
	needBash(t)
	rec := &recorder{}
	r := newTestRunner(t, Options{})
	src := "echo broken >&2\nexit 3"
	run, err := r.Start(context.Background(), RunRequest{Language: "sh", Content: src}, rec.emit)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, run)

	data, ok := rec.last("run:error")
	if !ok {
		t.Fatalf("expected run:error, got %+v", rec.snapshot())
	}
	ev := data.(ErrorEvent)
	if ev.ExitCode != 3 || ev.Language != "bash" || ev.Code != src {
		t.Fatalf("unexpected error event %+v", ev)
	}
	if !strings.Contains(ev.ErrorOutput, "broken") {
		t.Fatalf("errorOutput = %q", ev.ErrorOutput)
	}
	wantFailedCompletion(t, rec)
}

func TestRunnerTimeout(t *testing.T) {
	needBash(t)
	rec := &recorder{}
	r := newTestRunner(t, Options{Timeout: 200 * time.Millisecond})
	run, err := r.Start(context.Background(), RunRequest{Language: "bash", Content: "sleep 5; echo late"}, rec.emit)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, run)

	if strings.Contains(rec.stdout(), "late") {
		t.Fatal("program outlived its timeout")
	}
	data, ok := rec.last("run:error")
	if !ok || data.(ErrorEvent).ExitCode != -1 {
		t.Fatalf("expected timeout run:error, got %+v", rec.snapshot())
	}
	found := false
	for _, e := range rec.snapshot() {
		if o, ok := e.Data.(OutputEvent); ok && o.Type == StreamError && strings.Contains(o.Data, "timed out") {
			found = true
		}
	}
	if !found {
		t.Fatal("missing timeout notice")
	}
	wantFailedCompletion(t, rec)
}

func TestRunnerInputAddsNewline(t *testing.T) {
	needBash(t)
	rec := &recorder{}
	r := newTestRunner(t, Options{})
	run, err := r.Start(context.Background(), RunRequest{Language: "bash", Content: "read name\necho hi $name"}, rec.emit)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := run.Input("bob"); err != nil {
		t.Fatalf("Input: %v", err)
	}
	waitDone(t, run)
	if !strings.Contains(rec.stdout(), "hi bob") {
		t.Fatalf("stdout = %q", rec.stdout())
	}
}

func TestRunnerKillSuppressesOutput(t *testing.T) {
	needBash(t)
	rec := &recorder{}
	r := newTestRunner(t, Options{})
	run, err := r.Start(context.Background(), RunRequest{Language: "bash", Content: "echo start\nsleep 5\necho end"}, rec.emit)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(rec.stdout(), "start") {
		if time.Now().After(deadline) {
			t.Fatal("program never started")
		}
		time.Sleep(10 * time.Millisecond)
	}
	run.Kill()
	waitDone(t, run)

	if strings.Contains(rec.stdout(), "end") {
		t.Fatal("output after kill was delivered")
	}
	if _, ok := rec.last("run:complete"); ok {
		t.Fatal("killed run reported completion")
	}
	if _, ok := rec.last("run:error"); ok {
		t.Fatal("killed run reported an error")
	}
}

func TestRunnerProcessCap(t *testing.T) {
	needBash(t)
	r := newTestRunner(t, Options{MaxProcesses: 1})
	rec := &recorder{}
	first, err := r.Start(context.Background(), RunRequest{Language: "bash", Content: "sleep 5"}, rec.emit)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := r.Start(context.Background(), RunRequest{Language: "bash", Content: "echo hi"}, rec.emit); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	first.Kill()
	waitDone(t, first)

	second, err := r.Start(context.Background(), RunRequest{Language: "bash", Content: "true"}, rec.emit)
	if err != nil {
		t.Fatalf("slot was not released: %v", err)
	}
	waitDone(t, second)
}

func TestRunnerCleansUpRunDir(t *testing.T) {
	needBash(t)
	root := t.TempDir()
	r := newTestRunner(t, Options{TempDir: root})
	run, err := r.Start(context.Background(), RunRequest{Language: "bash", Content: "touch out.txt"}, (&recorder{}).emit)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, run)
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("run dir left behind: %v", entries)
	}
}

func TestRunnerRejectsUnknownLanguage(t *testing.T) {
	r := newTestRunner(t, Options{})
	_, err := r.Start(context.Background(), RunRequest{Language: "cobol", Content: "x"}, (&recorder{}).emit)
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestRunnerRejectsEmptyContent(t *testing.T) {
	rec := &recorder{}
	r := newTestRunner(t, Options{})
	for _, content := range []string{"", "   ", "\n\t\n"} {
		run, err := r.Start(context.Background(), RunRequest{Language: "python", Content: content}, rec.emit)
		if !errors.Is(err, ErrEmptyContent) {
			t.Fatalf("content %q: expected ErrEmptyContent, got %v", content, err)
		}
		if run != nil {
			t.Fatalf("content %q: run started", content)
		}
	}
	if ev := rec.snapshot(); len(ev) != 0 {
		t.Fatalf("events emitted for empty content: %+v", ev)
	}
	entries, err := os.ReadDir(r.tempRoot)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("run dir created for empty content: %d entries", len(entries))
	}
}

func TestRunnerMissingToolchain(t *testing.T) {
	r := newTestRunner(t, Options{})
	r.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	_, err := r.Start(context.Background(), RunRequest{Language: "rust", Content: "fn main(){}"}, (&recorder{}).emit)
	if err == nil || !strings.Contains(err.Error(), "is rustc installed?") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSourceFile(t *testing.T) {
	java, _ := LookupLanguage("java")
	py, _ := LookupLanguage("py")
	cases := []struct {
		lang Language
		in   string
		want string
	}{
		{java, "Solution.java", "Solution.java"},
		{java, "", "Main.java"},
		{py, "../../etc/passwd.py", "passwd.py"},
		{py, "script.js", "main.py"},
		{py, "bad name.py", "main.py"},
		{py, "Upper.PY", "Upper.py"},
	}
	for _, c := range cases {
		if got := sourceFile(c.lang, c.in); got != c.want {
			t.Errorf("sourceFile(%s, %q) = %q, want %q", c.lang.Name, c.in, got, c.want)
		}
	}
}

func TestLookupLanguageCoversSupported(t *testing.T) {
	for _, name := range Supported() {
		l, ok := LookupLanguage(name)
		if !ok || l.Command(l.DefaultFile) == "" {
			t.Errorf("language %s is not runnable", name)
		}
	}
	if l, ok := LookupLanguage(" C++ "); !ok || l.Name != "cpp" {
		t.Errorf("alias c++ resolved to %+v", l)
	}
}
