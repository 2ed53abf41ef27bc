package services

import (
	"errors"
	"net/http"
	"testing"
)

func TestLanguageExtensionMapping(t *testing.T) {
	cases := map[string]string{
		"main.py":    "python",
		"App.JAVA":   "java",
		"index.tsx":  "typescript",
		"notes":      "plaintext",
		"script.xyz": "plaintext",
	}
	for name, want := range cases {
		if got := LanguageFromName(name); got != want {
			t.Errorf("LanguageFromName(%q) = %q, want %q", name, got, want)
		}
	}
	if got := withExtension("solution.py", "cpp"); got != "solution.cpp" {
		t.Fatalf("withExtension = %q", got)
	}
	if got := withExtension("solution", "go"); got != "solution.go" {
		t.Fatalf("withExtension = %q", got)
	}
	if lang, ok := normalizeIdeLanguage("C++"); !ok || lang != "cpp" {
		t.Fatalf("normalizeIdeLanguage = %q %v", lang, ok)
	}
}

func TestIdeProjectAndFiles(t *testing.T) {
	e := newTestEnv(t)
	_, ctx := e.user(t, "ide@example.com")

	_, err := e.ide.CreateProject(ctx, CreateProjectInput{Name: "x", Language: "cobol"})
	wantAPIError(t, err, http.StatusBadRequest, "VALIDATION_ERROR")

	detail, err := e.ide.CreateProject(ctx, CreateProjectInput{Name: "Algorithms", Language: "python"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	p := detail.Project
	if len(detail.Files) != 1 || detail.Files[0].Path != "/main.py" || detail.Files[0].Content != Boilerplate("python") {
		t.Fatalf("unexpected seeded files: %+v", detail.Files)
	}
	if p.LastOpenFileID == nil || *p.LastOpenFileID != detail.Files[0].ID {
		t.Fatalf("last open file not set: %+v", p)
	}

	// No extension and no language: project language.
	f, err := e.ide.CreateFile(ctx, p.ID, CreateFileInput{Name: "helpers"})
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if f.Name != "helpers.py" || f.Path != "/helpers.py" || f.Language != "python" || f.Content != Boilerplate("python") {
		t.Fatalf("unexpected file: %+v", f)
	}

	// Extension decides the language.
	js, err := e.ide.CreateFile(ctx, p.ID, CreateFileInput{Name: "app.js", Content: "let x = 1"})
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if js.Language != "javascript" || js.Content != "let x = 1" {
		t.Fatalf("unexpected file: %+v", js)
	}

	_, err = e.ide.CreateFile(ctx, p.ID, CreateFileInput{Name: "app.js"})
	wantAPIError(t, err, http.StatusConflict, "CONFLICT")
	_, err = e.ide.CreateFile(ctx, p.ID, CreateFileInput{Name: "../etc"})
	wantAPIError(t, err, http.StatusBadRequest, "VALIDATION_ERROR")

	// Language change without a name renames the extension.
	cpp := "cpp"
	renamed, err := e.ide.UpdateFile(ctx, p.ID, js.ID, UpdateFileInput{Language: &cpp})
	if err != nil {
		t.Fatalf("UpdateFile: %v", err)
	}
	if renamed.Name != "app.cpp" || renamed.Path != "/app.cpp" || renamed.Language != "cpp" || renamed.Content != "let x = 1" {
		t.Fatalf("unexpected rename: %+v", renamed)
	}

	// Rename without a language re-derives it.
	name := "app.rb"
	rb, err := e.ide.UpdateFile(ctx, p.ID, js.ID, UpdateFileInput{Name: &name})
	if err != nil {
		t.Fatalf("UpdateFile: %v", err)
	}
	if rb.Path != "/app.rb" || rb.Language != "ruby" {
		t.Fatalf("unexpected rename: %+v", rb)
	}

	// Round trip of content.
	content := "puts 42\n"
	if _, err := e.ide.UpdateFile(ctx, p.ID, js.ID, UpdateFileInput{Content: &content}); err != nil {
		t.Fatalf("UpdateFile: %v", err)
	}
	back, err := e.ide.GetFile(ctx, p.ID, js.ID)
	if err != nil || back.Content != content {
		t.Fatalf("GetFile: err=%v content=%q", err, back.Content)
	}

	clash := "helpers.py"
	_, err = e.ide.UpdateFile(ctx, p.ID, js.ID, UpdateFileInput{Name: &clash})
	wantAPIError(t, err, http.StatusConflict, "CONFLICT")

	state, err := e.ide.SetState(ctx, p.ID, &js.ID)
	if err != nil || state.LastOpenFileID == nil || *state.LastOpenFileID != js.ID {
		t.Fatalf("SetState: err=%v state=%+v", err, state)
	}
	if err := e.ide.DeleteFile(ctx, p.ID, js.ID); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	state, err = e.ide.GetState(ctx, p.ID)
	if err != nil || state.LastOpenFileID != nil {
		t.Fatalf("last open file should clear on delete: err=%v state=%+v", err, state)
	}

	files, err := e.ide.ListFiles(ctx, p.ID)
	if err != nil || len(files) != 2 {
		t.Fatalf("ListFiles: err=%v len=%d", err, len(files))
	}

	_, bob := e.user(t, "ide-bob@example.com")
	_, err = e.ide.GetProject(bob, p.ID)
	wantAPIError(t, err, http.StatusNotFound, "NOT_FOUND")
	_, err = e.ide.GetFile(bob, p.ID, files[0].ID)
	wantAPIError(t, err, http.StatusNotFound, "NOT_FOUND")
	_, err = e.ide.CreateFile(bob, p.ID, CreateFileInput{Name: "evil.py"})
	wantAPIError(t, err, http.StatusNotFound, "NOT_FOUND")
}

func TestIdeAssistantReusesModeSession(t *testing.T) {
	e := newTestEnv(t, "It prints a greeting.", "Line 2 is missing a colon.", "Still fine.")
	_, ctx := e.user(t, "ide-assist@example.com")
	detail, err := e.ide.CreateProject(ctx, CreateProjectInput{Name: "Hello", Language: "python"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	p := detail.Project

	_, err = e.ide.Assist(ctx, p.ID, AssistInput{Mode: "refactor", Code: "x"})
	wantAPIError(t, err, http.StatusBadRequest, "VALIDATION_ERROR")

	first, err := e.ide.Assist(ctx, p.ID, AssistInput{Mode: "explain", Code: "print('hi')"})
	if err != nil {
		t.Fatalf("Assist: %v", err)
	}
	debug, err := e.ide.Assist(ctx, p.ID, AssistInput{Mode: "debug", Code: "if x\n  pass", ErrorOutput: "SyntaxError"})
	if err != nil {
		t.Fatalf("Assist: %v", err)
	}
	again, err := e.ide.Assist(ctx, p.ID, AssistInput{Mode: "explain", Message: "and line 1?"})
	if err != nil {
		t.Fatalf("Assist: %v", err)
	}
	if first.SessionID == debug.SessionID || first.SessionID != again.SessionID {
		t.Fatalf("sessions: explain=%s debug=%s again=%s", first.SessionID, debug.SessionID, again.SessionID)
	}
	if debug.Reply != "Line 2 is missing a colon." {
		t.Fatalf("reply = %q", debug.Reply)
	}

	calls := e.model.Calls()
	if len(calls[2].Messages) != 3 {
		t.Fatalf("explain history not replayed: %d messages", len(calls[2].Messages))
	}

	history, err := e.ide.History(ctx, p.ID, "explain")
	if err != nil || len(history) != 4 {
		t.Fatalf("History: err=%v len=%d", err, len(history))
	}
	none, err := e.ide.History(ctx, p.ID, "optimize")
	if err != nil || len(none) != 0 {
		t.Fatalf("History optimize: err=%v len=%d", err, len(none))
	}

	if err := e.ide.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	sessions, err := e.chat.ListSessions(ctx)
	if err != nil || len(sessions) != 0 {
		t.Fatalf("assistant sessions should be deleted: err=%v len=%d", err, len(sessions))
	}
	_, err = e.ide.GetProject(ctx, p.ID)
	wantAPIError(t, err, http.StatusNotFound, "NOT_FOUND")
}

func TestIdeAssistantFallback(t *testing.T) {
	e := newTestEnv(t)
	e.model.Err = errors.New("down")
	_, ctx := e.user(t, "ide-fallback@example.com")
	detail, _ := e.ide.CreateProject(ctx, CreateProjectInput{Name: "P"})

	res, err := e.ide.Assist(ctx, detail.Project.ID, AssistInput{Message: "help"})
	if err != nil {
		t.Fatalf("Assist: %v", err)
	}
	if !res.Degraded || res.Reply != AssistantUnavailableReply || res.Mode != AssistChat {
		t.Fatalf("unexpected result: %+v", res)
	}
}
