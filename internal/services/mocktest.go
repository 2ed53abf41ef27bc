package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/bytesolver-backend/internal/data/examdata"
	"github.com/yungbote/bytesolver-backend/internal/data/repos"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/domain/mocktest"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
)

const mockListLimit = 50

type ExamSummary struct {
	examdata.Exam
	QuestionCount int     `json:"questionCount"`
	MaxScore      float64 `json:"maxScore"`
}

// MockTestView is the client shape of a test. While the test is in progress
// Questions holds PublicQuestion values with no answers or explanations.
type MockTestView struct {
	*types.MockTest
	Questions      any                       `json:"questions,omitempty"`
	Answers        []*int                    `json:"answers,omitempty"`
	SubjectResults []types.MockSubjectResult `json:"subjectResults,omitempty"`
}

type SubmitMockInput struct {
	Answers   []*int `json:"answers"`
	TimeTaken int    `json:"timeTaken"`
}

type MockTestService interface {
	Exams() []ExamSummary
	Generate(ctx context.Context, examID string) (*MockTestView, error)
	List(ctx context.Context) ([]*types.MockTest, error)
	Get(ctx context.Context, testID uuid.UUID) (*MockTestView, error)
	Submit(ctx context.Context, testID uuid.UUID, in SubmitMockInput) (*MockTestView, error)
}

type mockTestService struct {
	log       *logger.Logger
	repo      repos.MockTestRepo
	catalogue *examdata.Catalogue
	activity  ActivityRecorder
	shuffle   func(n int, swap func(i, j int))
	now       Clock
}

func NewMockTestService(log *logger.Logger, repo repos.MockTestRepo, catalogue *examdata.Catalogue, activity ActivityRecorder) MockTestService {
	return &mockTestService{
		log:       log.With("service", "MockTestService"),
		repo:      repo,
		catalogue: catalogue,
		activity:  activity,
		shuffle:   rand.Shuffle,
		now:       systemClock,
	}
}

func errAlreadySubmitted() error {
	return apierr.New(http.StatusConflict, "ALREADY_SUBMITTED", errors.New("This test has already been submitted"))
}

func (ms *mockTestService) Exams() []ExamSummary {
	exams := ms.catalogue.Exams()
	out := make([]ExamSummary, 0, len(exams))
	for _, e := range exams {
		out = append(out, ExamSummary{Exam: e, QuestionCount: e.QuestionCount(), MaxScore: e.MaxScore()})
	}
	return out
}

func (ms *mockTestService) Generate(ctx context.Context, examID string) (*MockTestView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	exam, ok := ms.catalogue.Exam(strings.ToLower(strings.TrimSpace(examID)))
	if !ok {
		return nil, apierr.NotFound("Exam")
	}
	questions := assembleMockQuestions(exam, ms.catalogue.Bank, ms.shuffle)
	if len(questions) == 0 {
		return nil, fmt.Errorf("question bank has no questions for exam %s", exam.ID)
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return nil, err
	}

	now := ms.now().UTC()
	t, err := ms.repo.Create(dbctx.New(ctx), &types.MockTest{
		ID:              uuid.New(),
		UserID:          userID,
		ExamID:          exam.ID,
		ExamName:        exam.Name,
		Status:          mocktest.StatusInProgress,
		DurationMinutes: exam.DurationMinutes,
		PositiveMarks:   exam.PositiveMarks,
		NegativeMarks:   exam.NegativeMarks,
		TotalQuestions:  len(questions),
		MaxScore:        float64(len(questions)) * exam.PositiveMarks,
		Questions:       datatypes.JSON(raw),
		Answers:         datatypes.JSON([]byte(`[]`)),
		SubjectResults:  datatypes.JSON([]byte(`[]`)),
		StartedAt:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, err
	}
	ms.log.Info("Mock test generated", "user_id", userID, "exam_id", exam.ID, "questions", len(questions))
	return viewMockTest(t, questions)
}

// assembleMockQuestions draws each subject's quota from a shuffled copy of its
// pool, repeating the pool when it is too small, then fixes the total at
// exam.QuestionCount(). Ids are made unique per position.
func assembleMockQuestions(exam examdata.Exam, bank func(subject string) []types.MockQuestion, shuffle func(n int, swap func(i, j int))) []types.MockQuestion {
	want := exam.QuestionCount()
	out := make([]types.MockQuestion, 0, want)
	for _, s := range exam.Subjects {
		pool := bank(s.Name)
		if len(pool) == 0 || s.Count <= 0 {
			continue
		}
		shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		for i := 0; i < s.Count; i++ {
			out = append(out, pool[i%len(pool)])
		}
	}
	if len(out) == 0 {
		return nil
	}
	for i := 0; len(out) < want; i++ {
		out = append(out, out[i])
	}
	out = out[:want]
	for i := range out {
		out[i].ID = fmt.Sprintf("q%d-%s", i+1, out[i].ID)
	}
	return out
}

func viewMockTest(t *types.MockTest, questions []types.MockQuestion) (*MockTestView, error) {
	if questions == nil {
		if err := json.Unmarshal(t.Questions, &questions); err != nil {
			return nil, fmt.Errorf("decode mock test %s: %w", t.ID, err)
		}
	}
	view := &MockTestView{MockTest: t}
	if t.Status != mocktest.StatusCompleted {
		public := make([]types.MockPublicQuestion, 0, len(questions))
		for _, q := range questions {
			public = append(public, q.Public())
		}
		view.Questions = public
		return view, nil
	}
	view.Questions = questions
	if len(t.Answers) > 0 {
		_ = json.Unmarshal(t.Answers, &view.Answers)
	}
	if len(t.SubjectResults) > 0 {
		_ = json.Unmarshal(t.SubjectResults, &view.SubjectResults)
	}
	return view, nil
}

func (ms *mockTestService) List(ctx context.Context) ([]*types.MockTest, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	out, err := ms.repo.ListByUser(dbctx.New(ctx), userID, mockListLimit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*types.MockTest{}
	}
	return out, nil
}

func (ms *mockTestService) Get(ctx context.Context, testID uuid.UUID) (*MockTestView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	t, err := ms.repo.GetForUser(dbctx.New(ctx), userID, testID)
	if err != nil {
		return nil, notFound(err, "Mock test")
	}
	return viewMockTest(t, nil)
}

// MockScore is the outcome of grading one submission.
type MockScore struct {
	Score      float64
	Correct    int
	Incorrect  int
	Unanswered int
	Subjects   []types.MockSubjectResult
}

// ScoreMockTest applies positive/negative marking. answers[i] nil, missing or
// out of range counts as unanswered.
func ScoreMockTest(questions []types.MockQuestion, answers []*int, positive, negative float64) MockScore {
	var out MockScore
	bySubject := map[string]*types.MockSubjectResult{}
	var order []string
	for i, q := range questions {
		sr, ok := bySubject[q.Subject]
		if !ok {
			sr = &types.MockSubjectResult{Subject: q.Subject}
			bySubject[q.Subject] = sr
			order = append(order, q.Subject)
		}
		sr.Total++
		var a *int
		if i < len(answers) {
			a = answers[i]
		}
		switch {
		case a == nil || *a < 0 || *a >= len(q.Options):
			out.Unanswered++
			sr.Unanswered++
		case *a == q.CorrectAnswerIndex:
			out.Correct++
			sr.Correct++
			sr.Score += positive
		default:
			out.Incorrect++
			sr.Incorrect++
			sr.Score -= negative
		}
	}
	out.Score = float64(out.Correct)*positive - float64(out.Incorrect)*negative
	for _, s := range order {
		out.Subjects = append(out.Subjects, *bySubject[s])
	}
	return out
}

func (ms *mockTestService) Submit(ctx context.Context, testID uuid.UUID, in SubmitMockInput) (*MockTestView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.TimeTaken < 0 || in.TimeTaken > maxTimeTakenSeconds {
		return nil, apierr.Validation("timeTaken is out of range")
	}
	dbc := dbctx.New(ctx)
	t, err := ms.repo.GetForUser(dbc, userID, testID)
	if err != nil {
		return nil, notFound(err, "Mock test")
	}
	if t.Status == mocktest.StatusCompleted {
		return nil, errAlreadySubmitted()
	}
	var questions []types.MockQuestion
	if err := json.Unmarshal(t.Questions, &questions); err != nil {
		return nil, fmt.Errorf("decode mock test %s: %w", t.ID, err)
	}
	if len(in.Answers) > len(questions) {
		in.Answers = in.Answers[:len(questions)]
	}

	score := ScoreMockTest(questions, in.Answers, t.PositiveMarks, t.NegativeMarks)
	answers, err := json.Marshal(in.Answers)
	if err != nil {
		return nil, err
	}
	subjects, err := json.Marshal(score.Subjects)
	if err != nil {
		return nil, err
	}
	swapped, err := ms.repo.Complete(dbc, userID, t.ID, map[string]any{
		"answers":           datatypes.JSON(answers),
		"score":             score.Score,
		"correct_answers":   score.Correct,
		"incorrect_answers": score.Incorrect,
		"unanswered":        score.Unanswered,
		"subject_results":   datatypes.JSON(subjects),
		"time_taken":        in.TimeTaken,
	})
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, errAlreadySubmitted()
	}
	if ms.activity != nil {
		ms.activity.MockTest(userID, t.ExamName)
	}

	done, err := ms.repo.GetForUser(dbc, userID, t.ID)
	if err != nil {
		return nil, notFound(err, "Mock test")
	}
	return viewMockTest(done, questions)
}
