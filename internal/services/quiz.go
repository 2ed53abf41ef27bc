package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/bytesolver-backend/internal/clients/llm"
	"github.com/yungbote/bytesolver-backend/internal/data/repos"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/domain/chat"
	"github.com/yungbote/bytesolver-backend/internal/domain/quiz"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	"github.com/yungbote/bytesolver-backend/internal/pkg/jsonextract"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
	"github.com/yungbote/bytesolver-backend/internal/platform/promptstyle"
)

const (
	DefaultQuizQuestions = 5
	MaxQuizQuestions     = 20
	quizListLimit        = 50
	maxTimeTakenSeconds  = 24 * 60 * 60
)

var quizDifficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

// Filler options used when the model returns fewer than four choices.
var fillerOptions = []string{"None of the above", "All of the above", "Cannot be determined", "Not enough information"}

type GenerateQuizInput struct {
	SessionID    uuid.UUID `json:"sessionId"`
	NumQuestions int       `json:"numQuestions"`
	Difficulty   string    `json:"difficulty"`
}

type SubmitQuizInput struct {
	Answers   []types.QuizAttemptAnswer `json:"answers"`
	TimeTaken int                       `json:"timeTaken"`
}

type QuizAttemptResult struct {
	Attempt *types.QuizAttempt `json:"attempt"`
	Quiz    *types.Quiz        `json:"quiz"`
}

type QuizService interface {
	Generate(ctx context.Context, in GenerateQuizInput) (*types.Quiz, error)
	List(ctx context.Context) ([]*types.Quiz, error)
	Get(ctx context.Context, quizID uuid.UUID) (*types.Quiz, error)
	Submit(ctx context.Context, quizID uuid.UUID, in SubmitQuizInput) (*QuizAttemptResult, error)
	// Attempts lists the caller's attempts, optionally for one quiz.
	Attempts(ctx context.Context, quizID *uuid.UUID) ([]*types.QuizAttempt, error)
}

type quizService struct {
	log         *logger.Logger
	quizRepo    repos.QuizRepo
	attemptRepo repos.QuizAttemptRepo
	sessionRepo repos.ChatSessionRepo
	messageRepo repos.ChatMessageRepo
	model       llm.Client
	activity    ActivityRecorder
	now         Clock
}

func NewQuizService(
	log *logger.Logger,
	quizRepo repos.QuizRepo,
	attemptRepo repos.QuizAttemptRepo,
	sessionRepo repos.ChatSessionRepo,
	messageRepo repos.ChatMessageRepo,
	model llm.Client,
	activity ActivityRecorder,
) QuizService {
	return &quizService{
		log:         log.With("service", "QuizService"),
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		model:       model,
		activity:    activity,
		now:         systemClock,
	}
}

func errGenerationFailed(err error) error {
	return apierr.New(http.StatusBadGateway, "GENERATION_FAILED", fmt.Errorf("Could not generate a quiz, please try again: %w", err))
}

func (qs *quizService) Generate(ctx context.Context, in GenerateQuizInput) (*types.Quiz, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	n := in.NumQuestions
	if n == 0 {
		n = DefaultQuizQuestions
	}
	if n < 1 || n > MaxQuizQuestions {
		return nil, apierr.Validation("numQuestions must be between 1 and 20")
	}
	difficulty := strings.ToLower(strings.TrimSpace(in.Difficulty))
	if difficulty == "" {
		difficulty = "medium"
	}
	if !quizDifficulties[difficulty] {
		return nil, apierr.Validation("difficulty must be easy, medium or hard")
	}

	dbc := dbctx.New(ctx)
	session, err := qs.sessionRepo.GetForUser(dbc, userID, in.SessionID)
	if err != nil {
		return nil, notFound(err, "Session")
	}
	msgs, err := qs.messageRepo.ListBySession(dbc, session.ID)
	if err != nil {
		return nil, err
	}
	question, answer, ok := lastExchange(msgs)
	if !ok {
		return nil, apierr.BadRequest("INSUFFICIENT_CONTEXT", "Ask at least one question in this chat before generating a quiz")
	}

	system := promptstyle.ApplySystem(quizSystemPrompt, promptstyle.ModeJSON)
	user := fmt.Sprintf("Student question:\n%s\n\nTutor answer:\n%s\n\nWrite %d %s multiple-choice questions that test this material.",
		truncateRunes(question, 4000), truncateRunes(answer, 8000), n, difficulty)
	reply, err := qs.model.Complete(ctx, system, []llm.Message{{Role: llm.RoleUser, Content: user}})
	if err != nil {
		qs.log.Warn("Quiz generation call failed", "session_id", session.ID, "error", err)
		return nil, errGenerationFailed(err)
	}

	questions, kind, err := ParseQuizQuestions(reply, difficulty, n)
	if err != nil {
		qs.log.Warn("Quiz reply unusable", "session_id", session.ID, "parse", kind.String(), "error", err)
		return nil, errGenerationFailed(err)
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return nil, err
	}

	topic := strings.ToLower(strings.TrimSpace(session.Category))
	if topic == "" {
		topic = ClassifyTopic(question)
	}
	sid := session.ID
	return qs.quizRepo.Create(dbc, &types.Quiz{
		ID:         uuid.New(),
		UserID:     userID,
		SessionID:  &sid,
		Title:      "Quiz: " + deriveTitle(question),
		Topic:      topic,
		Difficulty: difficulty,
		Questions:  datatypes.JSON(raw),
		CreatedAt:  qs.now().UTC(),
	})
}

const quizSystemPrompt = `Create a multiple-choice quiz from the tutoring exchange the user provides.
Respond with a JSON array only. Each element must be:
{"question": string, "options": [four strings], "correctAnswerIndex": 0-3, "explanation": string}
Exactly one option is correct. Do not number the options.`

// lastExchange returns the last user question that received an assistant reply.
func lastExchange(msgs []*types.ChatMessage) (string, string, bool) {
	for i := len(msgs) - 1; i > 0; i-- {
		if msgs[i].Role != chat.RoleAssistant {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if msgs[j].Role == chat.RoleUser {
				return msgs[j].Content, msgs[i].Content, true
			}
		}
		return "", "", false
	}
	return "", "", false
}

type rawQuizQuestion struct {
	Type               string          `json:"type"`
	Question           string          `json:"question"`
	Options            []any           `json:"options"`
	CorrectAnswerIndex json.RawMessage `json:"correctAnswerIndex"`
	CorrectAnswer      any             `json:"correctAnswer"`
	Answer             any             `json:"answer"`
	Explanation        string          `json:"explanation"`
	Difficulty         string          `json:"difficulty"`
}

// ParseQuizQuestions pulls questions out of a model reply and normalises each
// MCQ to exactly four options with an in-range answer index.
func ParseQuizQuestions(reply, difficulty string, limit int) ([]types.QuizQuestion, jsonextract.Kind, error) {
	var list any
	kind, err := jsonextract.Into(reply, &list)
	if errors.Is(err, jsonextract.ErrNoJSON) {
		return nil, kind, errors.New("reply contained no JSON")
	}
	if err != nil {
		return nil, kind, fmt.Errorf("decode reply: %w", err)
	}
	if obj, ok := list.(map[string]any); ok {
		list = obj["questions"]
	}
	items, ok := list.([]any)
	if !ok {
		return nil, kind, errors.New("reply JSON is not a question list")
	}

	out := make([]types.QuizQuestion, 0, len(items))
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var rq rawQuizQuestion
		if err := json.Unmarshal(b, &rq); err != nil {
			continue
		}
		q, ok := normalizeQuestion(rq, difficulty)
		if !ok {
			continue
		}
		out = append(out, q)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, kind, errors.New("reply held no usable questions")
	}
	return out, kind, nil
}

func normalizeQuestion(rq rawQuizQuestion, difficulty string) (types.QuizQuestion, bool) {
	text := strings.TrimSpace(rq.Question)
	if text == "" {
		return types.QuizQuestion{}, false
	}
	d := strings.ToLower(strings.TrimSpace(rq.Difficulty))
	if !quizDifficulties[d] {
		d = difficulty
	}
	answerText := strings.TrimSpace(anyString(rq.CorrectAnswer))
	if answerText == "" {
		answerText = strings.TrimSpace(anyString(rq.Answer))
	}

	options := make([]string, 0, quiz.OptionCount)
	for _, o := range rq.Options {
		if s := strings.TrimSpace(anyString(o)); s != "" {
			options = append(options, s)
		}
	}
	if strings.EqualFold(rq.Type, quiz.TypeShort) && len(options) == 0 {
		if answerText == "" {
			return types.QuizQuestion{}, false
		}
		return types.QuizQuestion{
			Type:          quiz.TypeShort,
			Question:      text,
			CorrectAnswer: answerText,
			Explanation:   strings.TrimSpace(rq.Explanation),
			Difficulty:    d,
		}, true
	}
	if len(options) == 0 {
		return types.QuizQuestion{}, false
	}

	idx, hasIdx := parseIndex(rq.CorrectAnswerIndex)
	if !hasIdx && answerText != "" {
		for i, o := range options {
			if strings.EqualFold(o, answerText) {
				idx, hasIdx = i, true
				break
			}
		}
	}
	if len(options) > quiz.OptionCount {
		options = options[:quiz.OptionCount]
	}
	for _, f := range fillerOptions {
		if len(options) == quiz.OptionCount {
			break
		}
		if !containsFold(options, f) {
			options = append(options, f)
		}
	}
	return types.QuizQuestion{
		Type:               quiz.TypeMCQ,
		Question:           text,
		Options:            options,
		CorrectAnswerIndex: clampInt(idx, 0, quiz.OptionCount-1),
		Explanation:        strings.TrimSpace(rq.Explanation),
		Difficulty:         d,
	}, true
}

// parseIndex accepts numbers, numeric strings and option letters.
func parseIndex(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	if len(s) == 1 {
		c := strings.ToUpper(s)[0]
		if c >= 'A' && c <= 'D' {
			return int(c - 'A'), true
		}
	}
	return 0, false
}

func anyString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func (qs *quizService) List(ctx context.Context) ([]*types.Quiz, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	out, err := qs.quizRepo.ListByUser(dbctx.New(ctx), userID, quizListLimit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*types.Quiz{}
	}
	return out, nil
}

func (qs *quizService) Get(ctx context.Context, quizID uuid.UUID) (*types.Quiz, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	q, err := qs.quizRepo.GetForUser(dbctx.New(ctx), userID, quizID)
	if err != nil {
		return nil, notFound(err, "Quiz")
	}
	return q, nil
}

func (qs *quizService) Submit(ctx context.Context, quizID uuid.UUID, in SubmitQuizInput) (*QuizAttemptResult, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.TimeTaken < 0 || in.TimeTaken > maxTimeTakenSeconds {
		return nil, apierr.Validation("timeTaken is out of range")
	}
	dbc := dbctx.New(ctx)
	q, err := qs.quizRepo.GetForUser(dbc, userID, quizID)
	if err != nil {
		return nil, notFound(err, "Quiz")
	}
	var questions []types.QuizQuestion
	if err := json.Unmarshal(q.Questions, &questions); err != nil {
		return nil, fmt.Errorf("decode quiz %s: %w", q.ID, err)
	}

	score := ScoreQuiz(questions, in.Answers)
	answers, err := json.Marshal(score.Answers)
	if err != nil {
		return nil, err
	}
	attempt, err := qs.attemptRepo.Create(dbc, &types.QuizAttempt{
		ID:         uuid.New(),
		QuizID:     q.ID,
		UserID:     userID,
		Answers:    datatypes.JSON(answers),
		Score:      score.Score,
		Total:      score.Total,
		Correct:    score.Correct,
		Incorrect:  score.Incorrect,
		Unanswered: score.Unanswered,
		Percentage: score.Percentage,
		TimeTaken:  in.TimeTaken,
		CreatedAt:  qs.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if qs.activity != nil {
		qs.activity.QuizAttempt(userID, score.Correct, score.Total, q.Topic)
	}
	return &QuizAttemptResult{Attempt: attempt, Quiz: q}, nil
}

func (qs *quizService) Attempts(ctx context.Context, quizID *uuid.UUID) ([]*types.QuizAttempt, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	var out []*types.QuizAttempt
	if quizID != nil {
		out, err = qs.attemptRepo.ListByQuiz(dbc, userID, *quizID)
	} else {
		out, err = qs.attemptRepo.ListByUser(dbc, userID, quizListLimit)
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*types.QuizAttempt{}
	}
	return out, nil
}
