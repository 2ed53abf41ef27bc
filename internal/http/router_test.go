package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yungbote/bytesolver-backend/internal/clients/llm/llmtest"
	"github.com/yungbote/bytesolver-backend/internal/clients/redis"
	"github.com/yungbote/bytesolver-backend/internal/data/db"
	"github.com/yungbote/bytesolver-backend/internal/data/examdata"
	"github.com/yungbote/bytesolver-backend/internal/data/repos"
	"github.com/yungbote/bytesolver-backend/internal/data/repos/testutil"
	bshttp "github.com/yungbote/bytesolver-backend/internal/http"
	httpH "github.com/yungbote/bytesolver-backend/internal/http/handlers"
	httpMW "github.com/yungbote/bytesolver-backend/internal/http/middleware"
	"github.com/yungbote/bytesolver-backend/internal/jobs/worker"
	"github.com/yungbote/bytesolver-backend/internal/platform/objectstore"
	"github.com/yungbote/bytesolver-backend/internal/services"
	"github.com/yungbote/bytesolver-backend/internal/terminal"
)

func init() { gin.SetMode(gin.TestMode) }

// newTestRouter wires the full route table against SQLite, a local object
// store and a scripted model.
func newTestRouter(t *testing.T, replies ...string) *gin.Engine {
	t.Helper()
	gdb := testutil.FreshDB(t)
	log := testutil.Logger(t)
	tx := db.NewGormTxRunner(gdb)
	model := llmtest.New(replies...)

	users := repos.NewUserRepo(gdb, log)
	sessions := repos.NewChatSessionRepo(gdb, log)
	messages := repos.NewChatMessageRepo(gdb, log)
	pdfs := repos.NewUploadedPDFRepo(gdb, log)
	doubts := repos.NewDoubtRepo(gdb, log)
	attempts := repos.NewQuizAttemptRepo(gdb, log)

	tokens, err := services.NewTokenService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	store, err := objectstore.NewLocal(log, t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	auth := services.NewAuthService(log, users, tokens, nil)
	doubtSvc := services.NewDoubtService(log, doubts)
	streakSvc := services.NewStreakService(log, repos.NewStudyStreakRepo(gdb, log), time.UTC)
	statsSvc := services.NewStatsService(log, repos.NewLearningStatisticsRepo(gdb, log), doubts, attempts, streakSvc, users, time.UTC)
	activity := services.NewActivityRecorder(log, worker.Inline{Log: log}, doubtSvc, statsSvc, streakSvc)

	return bshttp.NewRouter(bshttp.RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, auth),
		AuthLimiter:    httpMW.NewIPRateLimiter(100),

		AuthHandler:     httpH.NewAuthHandler(auth),
		ChatHandler:     httpH.NewChatHandler(log, services.NewChatService(log, tx, sessions, messages, pdfs, model, activity)),
		PDFHandler:      httpH.NewPDFHandler(log, services.NewPDFService(log, tx, pdfs, sessions, store, nil)),
		QuizHandler:     httpH.NewQuizHandler(services.NewQuizService(log, repos.NewQuizRepo(gdb, log), attempts, sessions, messages, model, activity)),
		MockTestHandler: httpH.NewMockTestHandler(services.NewMockTestService(log, repos.NewMockTestRepo(gdb, log), examdata.MustLoadEmbedded(), activity)),
		ProgressHandler: httpH.NewProgressHandler(statsSvc, streakSvc, doubtSvc),
		IdeHandler:      httpH.NewIdeHandler(services.NewIdeService(log, tx, repos.NewIdeProjectRepo(gdb, log), repos.NewIdeFileRepo(gdb, log), sessions, messages, model)),
		VideoHandler:    httpH.NewVideoHandler(services.NewVideoService(log, repos.NewGormVideoStore(gdb, log), nil, redis.NewMemoryCache())),
		TerminalHandler: httpH.NewTerminalHandler(log, terminal.NewRunner(log, terminal.Options{TempDir: t.TempDir()}), nil),
		HealthHandler:   httpH.NewHealthHandler(gdb),
	})
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, out
}

func register(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	w, body := do(t, r, http.MethodPost, "/api/auth/register", "", gin.H{"email": email, "password": "secret1", "name": "A"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	token, _ := body["accessToken"].(string)
	if token == "" {
		t.Fatalf("register: no accessToken in %v", body)
	}
	return token
}

func TestRegisterThenMe(t *testing.T) {
	r := newTestRouter(t)
	token := register(t, r, "a@x.com")

	w, body := do(t, r, http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
	user, _ := body["user"].(map[string]any)
	if user["email"] != "a@x.com" {
		t.Fatalf("me: email = %v", user["email"])
	}
	if _, ok := user["password"]; ok {
		t.Fatalf("me: password leaked")
	}
	if _, ok := user["passwordHash"]; ok {
		t.Fatalf("me: password hash leaked")
	}
	if strings.Contains(w.Body.String(), "secret1") {
		t.Fatalf("me: body contains the password")
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r := newTestRouter(t)
	w, body := do(t, r, http.MethodGet, "/api/chat/sessions", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	apiErr, _ := body["error"].(map[string]any)
	if body["success"] != false || apiErr["code"] != "AUTH_REQUIRED" {
		t.Fatalf("body = %v", body)
	}

	w, _ = do(t, r, http.MethodGet, "/api/chat/sessions", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", w.Code)
	}
}

func TestHealthAndUnknownRoute(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/health", "/api/health"} {
		w, body := do(t, r, http.MethodGet, path, "", nil)
		if w.Code != http.StatusOK || body["status"] != "ok" {
			t.Fatalf("%s: %d %v", path, w.Code, body)
		}
	}
	w, body := do(t, r, http.MethodGet, "/api/nope", "", nil)
	apiErr, _ := body["error"].(map[string]any)
	if w.Code != http.StatusNotFound || apiErr["code"] != "NOT_FOUND" {
		t.Fatalf("unknown route: %d %v", w.Code, body)
	}
}

func TestSyllabusChatWithoutPDFFallsBack(t *testing.T) {
	r := newTestRouter(t, "model should not be asked")
	token := register(t, r, "b@x.com")

	w, body := do(t, r, http.MethodPost, "/api/chat/sessions", token, gin.H{"mode": "syllabus"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: %d %s", w.Code, w.Body.String())
	}
	session, _ := body["session"].(map[string]any)
	id, _ := session["id"].(string)

	w, body = do(t, r, http.MethodPost, "/api/chat/sessions/"+id+"/messages", token, gin.H{"content": "What is osmosis?"})
	if w.Code != http.StatusOK {
		t.Fatalf("send: %d %s", w.Code, w.Body.String())
	}
	reply, _ := body["assistantMessage"].(map[string]any)
	if content, _ := reply["content"].(string); !strings.Contains(content, services.NoSyllabusReply) {
		t.Fatalf("reply = %q", content)
	}
}

func TestChatStreamsServerSentEvents(t *testing.T) {
	r := newTestRouter(t, "Osmosis moves water across a membrane.")
	token := register(t, r, "c@x.com")

	_, body := do(t, r, http.MethodPost, "/api/chat/sessions", token, gin.H{"mode": "open"})
	session, _ := body["session"].(map[string]any)
	id, _ := session["id"].(string)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/sessions/"+id+"/messages?stream=true", strings.NewReader(`{"content":"What is osmosis?"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}
	var text strings.Builder
	done := false
	for _, line := range strings.Split(w.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame map[string]any
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame); err != nil {
			t.Fatalf("frame %q: %v", line, err)
		}
		if s, ok := frame["content"].(string); ok {
			text.WriteString(s)
		}
		if frame["done"] == true {
			done = true
		}
	}
	if !done || text.String() != "Osmosis moves water across a membrane." {
		t.Fatalf("done=%v text=%q", done, text.String())
	}
}

func TestNeetMockTestRoundTrip(t *testing.T) {
	r := newTestRouter(t)
	token := register(t, r, "d@x.com")

	w, body := do(t, r, http.MethodPost, "/api/mock-tests/generate", token, gin.H{"examId": "neet"})
	if w.Code != http.StatusCreated {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "correctAnswerIndex") {
		t.Fatalf("generated test exposes answers")
	}
	mock, _ := body["mockTest"].(map[string]any)
	questions, _ := mock["questions"].([]any)
	if len(questions) != 180 {
		t.Fatalf("questions = %d", len(questions))
	}
	subjects := map[string]bool{"Physics": true, "Chemistry": true, "Botany": true, "Zoology": true}
	for i, q := range questions {
		subject, _ := q.(map[string]any)["subject"].(string)
		if !subjects[subject] {
			t.Fatalf("question %d subject = %q", i, subject)
		}
	}

	id, _ := mock["id"].(string)
	answers := make([]*int, 180)
	w, body = do(t, r, http.MethodPost, "/api/mock-tests/"+id+"/submit", token, gin.H{"answers": answers})
	if w.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}
	result, _ := body["mockTest"].(map[string]any)
	if result["correctAnswers"] != float64(0) || result["incorrectAnswers"] != float64(0) || result["score"] != float64(0) {
		t.Fatalf("result = correct %v incorrect %v score %v", result["correctAnswers"], result["incorrectAnswers"], result["score"])
	}
}

type wsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func dialTerminal(t *testing.T, r http.Handler, token string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/terminal?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFramesUntil(t *testing.T, conn *websocket.Conn, event string) []wsFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(15 * time.Second))
	var frames []wsFrame
	for {
		var f wsFrame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read (waiting for %s): %v; got %d frames", event, err, len(frames))
		}
		frames = append(frames, f)
		if f.Event == event {
			return frames
		}
	}
}

func stdoutOf(frames []wsFrame) string {
	var b strings.Builder
	for _, f := range frames {
		if f.Event != "output" {
			continue
		}
		var o terminal.OutputEvent
		if json.Unmarshal(f.Data, &o) == nil && o.Type == "stdout" {
			b.WriteString(o.Data)
		}
	}
	return b.String()
}

func TestTerminalRunsAndKillsPython(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed")
	}
	r := newTestRouter(t)
	token := register(t, r, "e@x.com")
	conn := dialTerminal(t, r, token)

	run := func(code string) {
		t.Helper()
		if err := conn.WriteJSON(gin.H{"event": "run", "data": gin.H{"language": "python", "content": code}}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	run("print('hi')")
	frames := readFramesUntil(t, conn, "run:complete")
	if !strings.Contains(stdoutOf(frames), "hi") {
		t.Fatalf("stdout = %q", stdoutOf(frames))
	}
	var complete terminal.CompleteEvent
	_ = json.Unmarshal(frames[len(frames)-1].Data, &complete)
	if !complete.Success {
		t.Fatalf("first run did not succeed")
	}

	run("import time\nprint('start', flush=True)\ntime.sleep(30)\nprint('late')")
	frames = readFramesUntil(t, conn, "output")
	for !strings.Contains(stdoutOf(frames), "start") {
		frames = append(frames, readFramesUntil(t, conn, "output")...)
	}
	if err := conn.WriteJSON(gin.H{"event": "kill"}); err != nil {
		t.Fatalf("kill: %v", err)
	}
	frames = readFramesUntil(t, conn, "run:complete")
	complete = terminal.CompleteEvent{}
	_ = json.Unmarshal(frames[len(frames)-1].Data, &complete)
	if complete.Success {
		t.Fatalf("killed run reported success")
	}
	if strings.Contains(stdoutOf(frames), "late") {
		t.Fatalf("stdout after kill: %q", stdoutOf(frames))
	}

	_ = conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var extra wsFrame
	if err := conn.ReadJSON(&extra); err == nil && extra.Event == "output" && strings.Contains(string(extra.Data), "stdout") {
		t.Fatalf("output after kill: %s", extra.Data)
	}
}

func TestTerminalRejectsMissingToken(t *testing.T) {
	r := newTestRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/terminal"
	_, resp, err := websocket.DefaultDialer.DialContext(context.Background(), url, nil)
	if err == nil {
		t.Fatalf("dial without token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %v", resp)
	}
}
