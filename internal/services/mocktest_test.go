package services

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/bytesolver-backend/internal/data/examdata"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/domain/mocktest"
)

func noShuffle(int, func(i, j int)) {}

func TestAssembleMockQuestionsFillsQuotas(t *testing.T) {
	exam := examdata.Exam{
		ID: "x",
		Subjects: []examdata.SubjectQuota{
			{Name: "Physics", Count: 3},
			{Name: "Biology", Count: 2},
		},
	}
	bank := func(subject string) []types.MockQuestion {
		if subject == "Physics" {
			return []types.MockQuestion{{ID: "p1", Subject: subject}, {ID: "p2", Subject: subject}}
		}
		return nil
	}
	out := assembleMockQuestions(exam, bank, noShuffle)
	if len(out) != exam.QuestionCount() {
		t.Fatalf("expected %d questions, got %d", exam.QuestionCount(), len(out))
	}
	seen := map[string]bool{}
	for i, q := range out {
		if seen[q.ID] {
			t.Fatalf("duplicate id %q", q.ID)
		}
		seen[q.ID] = true
		if q.Subject != "Physics" {
			t.Fatalf("question %d has subject %q", i, q.Subject)
		}
	}
	if !strings.HasSuffix(out[2].ID, "-p1") {
		t.Fatalf("pool should repeat in order, got %q", out[2].ID)
	}

	empty := assembleMockQuestions(exam, func(string) []types.MockQuestion { return nil }, noShuffle)
	if empty != nil {
		t.Fatalf("expected nil for empty bank, got %d", len(empty))
	}
}

func TestScoreMockTest(t *testing.T) {
	qs := []types.MockQuestion{
		{Subject: "Physics", Options: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: 0},
		{Subject: "Physics", Options: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: 1},
		{Subject: "Chemistry", Options: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: 2},
		{Subject: "Chemistry", Options: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: 3},
	}
	got := ScoreMockTest(qs, []*int{intPtr(0), intPtr(0), nil}, 4, 1)
	if got.Correct != 1 || got.Incorrect != 1 || got.Unanswered != 2 || got.Score != 3 {
		t.Fatalf("unexpected score: %+v", got)
	}
	if len(got.Subjects) != 2 || got.Subjects[0].Subject != "Physics" || got.Subjects[0].Score != 3 || got.Subjects[1].Unanswered != 2 {
		t.Fatalf("unexpected subjects: %+v", got.Subjects)
	}
	if out := ScoreMockTest(qs[:1], []*int{intPtr(9)}, 4, 1); out.Unanswered != 1 {
		t.Fatalf("out of range answer should be unanswered: %+v", out)
	}
}

func TestMockTestLifecycle(t *testing.T) {
	e := newTestEnv(t)
	userID, ctx := e.user(t, "mock@example.com")

	exams := e.mock.Exams()
	if len(exams) == 0 {
		t.Fatal("catalogue is empty")
	}
	exam := exams[0]

	_, err := e.mock.Generate(ctx, "no-such-exam")
	wantAPIError(t, err, http.StatusNotFound, "NOT_FOUND")

	view, err := e.mock.Generate(ctx, exam.ID)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if view.Status != mocktest.StatusInProgress || view.TotalQuestions != exam.QuestionCount || view.UserID != userID {
		t.Fatalf("unexpected test: %+v", view.MockTest)
	}
	public, ok := view.Questions.([]types.MockPublicQuestion)
	if !ok || len(public) != exam.QuestionCount {
		t.Fatalf("in-progress view must carry public questions, got %T", view.Questions)
	}

	got, err := e.mock.Get(ctx, view.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := got.Questions.([]types.MockPublicQuestion); !ok {
		t.Fatalf("Get leaked answers: %T", got.Questions)
	}

	done, err := e.mock.Submit(ctx, view.ID, SubmitMockInput{Answers: []*int{intPtr(0)}, TimeTaken: 600})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if done.Status != mocktest.StatusCompleted || done.CompletedAt == nil || done.TimeTaken != 600 {
		t.Fatalf("unexpected completed test: %+v", done.MockTest)
	}
	if done.CorrectAnswers+done.IncorrectAnswers+done.Unanswered != exam.QuestionCount {
		t.Fatalf("counts do not add up: %+v", done.MockTest)
	}
	if _, ok := done.Questions.([]types.MockQuestion); !ok {
		t.Fatalf("completed view should include answers, got %T", done.Questions)
	}
	if len(done.SubjectResults) == 0 {
		t.Fatal("expected subject results")
	}

	_, err = e.mock.Submit(ctx, view.ID, SubmitMockInput{})
	wantAPIError(t, err, http.StatusConflict, "ALREADY_SUBMITTED")

	list, err := e.mock.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: err=%v len=%d", err, len(list))
	}

	_, bob := e.user(t, "mock-bob@example.com")
	_, err = e.mock.Get(bob, view.ID)
	wantAPIError(t, err, http.StatusNotFound, "NOT_FOUND")
	_, err = e.mock.Submit(bob, uuid.New(), SubmitMockInput{})
	wantAPIError(t, err, http.StatusNotFound, "NOT_FOUND")
}

func TestGenerateBITSATPaper(t *testing.T) {
	e := newTestEnv(t)
	_, ctx := e.user(t, "bitsat@example.com")

	view, err := e.mock.Generate(ctx, "bitsat")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	public, ok := view.Questions.([]types.MockPublicQuestion)
	if !ok {
		t.Fatalf("in-progress view must carry public questions, got %T", view.Questions)
	}
	if len(public) != 130 || view.TotalQuestions != 130 {
		t.Fatalf("expected 130 questions, got %d (total %d)", len(public), view.TotalQuestions)
	}

	tally := map[string]int{}
	for _, q := range public {
		tally[q.Subject]++
	}
	want := map[string]int{
		"Physics":             30,
		"Chemistry":           30,
		"English Proficiency": 10,
		"Logical Reasoning":   20,
		"Mathematics":         40,
	}
	if len(tally) != len(want) {
		t.Fatalf("unexpected subjects: %v", tally)
	}
	for subject, n := range want {
		if tally[subject] != n {
			t.Fatalf("%s: expected %d questions, got %d", subject, n, tally[subject])
		}
	}
}
