package terminal

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxFrame   = 1 << 20
	killWait   = 3 * time.Second
)

// Frame is the wire envelope in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type inputPayload struct {
	Text string `json:"text"`
}

// Session bridges one websocket to the runner. At most one program runs per
// session; a new run replaces the previous one.
type Session struct {
	log    *logger.Logger
	conn   *websocket.Conn
	runner *Runner

	writeMu sync.Mutex

	mu      sync.Mutex
	current *Run
	closed  bool
}

func NewSession(log *logger.Logger, conn *websocket.Conn, runner *Runner) *Session {
	return &Session{log: log, conn: conn, runner: runner}
}

// Serve reads frames until the socket closes, then kills any running program.
func (s *Session) Serve(ctx context.Context) {
	defer s.shutdown()

	s.conn.SetReadLimit(maxFrame)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go s.pingLoop(stopPing)

	for {
		var f Frame
		if err := s.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("Terminal socket closed", "error", err)
			}
			return
		}
		s.handle(ctx, f)
	}
}

func (s *Session) handle(ctx context.Context, f Frame) {
	switch f.Event {
	case "run":
		var req RunRequest
		if err := json.Unmarshal(f.Data, &req); err != nil {
			s.emit("output", OutputEvent{Type: StreamError, Data: "Invalid run payload"})
			return
		}
		s.run(ctx, req)
	case "input":
		var in inputPayload
		if err := json.Unmarshal(f.Data, &in); err != nil {
			return
		}
		s.mu.Lock()
		run := s.current
		s.mu.Unlock()
		if run == nil {
			return
		}
		if err := run.Input(in.Text); err != nil {
			s.log.Debug("Stdin write failed", "error", err)
		}
	case "kill":
		if run := s.kill(); run != nil {
			select {
			case <-run.Done():
			case <-time.After(killWait):
			}
			s.emit("run:complete", CompleteEvent{Success: false})
		}
	default:
		s.emit("output", OutputEvent{Type: StreamError, Data: "Unknown event: " + f.Event})
	}
}

func (s *Session) run(ctx context.Context, req RunRequest) {
	s.kill()

	lang, _ := LookupLanguage(req.Language)
	name := lang.Name
	if name == "" {
		name = req.Language
	}
	s.emit("output", OutputEvent{Type: StreamInfo, Data: "Running " + name + "..."})

	run, err := s.runner.Start(ctx, req, s.emit)
	if err != nil {
		msg := err.Error()
		switch {
		case errors.Is(err, ErrUnsupportedLanguage):
			msg = "Unsupported language: " + req.Language
		case errors.Is(err, ErrEmptyContent):
			msg = "No code to run"
		}
		s.emit("output", OutputEvent{Type: StreamError, Data: msg})
		s.emit("run:error", ErrorEvent{ExitCode: -1, ErrorOutput: msg, Language: name, Code: req.Content})
		s.emit("run:complete", CompleteEvent{Success: false})
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		run.Kill()
		return
	}
	s.current = run
	s.mu.Unlock()

	go func() {
		<-run.Done()
		s.mu.Lock()
		if s.current == run {
			s.current = nil
		}
		s.mu.Unlock()
	}()
}

// kill stops the current run silently and returns it, or nil when idle.
func (s *Session) kill() *Run {
	s.mu.Lock()
	run := s.current
	s.current = nil
	s.mu.Unlock()
	if run != nil {
		run.Kill()
	}
	return run
}

func (s *Session) shutdown() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.kill()
	_ = s.conn.Close()
}

func (s *Session) emit(event string, data any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(outFrame{Event: event, Data: data}); err != nil {
		s.log.Debug("Terminal write failed", "event", event, "error", err)
	}
}

func (s *Session) pingLoop(stop <-chan struct{}) {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
