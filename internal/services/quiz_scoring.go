package services

import (
	"math"
	"strings"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/domain/quiz"
)

// QuizScore holds both marks for one attempt. Score counts +1 per correct
// answer; Percentage applies -0.5 per incorrect answer, floored at zero.
type QuizScore struct {
	Score      int
	Correct    int
	Incorrect  int
	Unanswered int
	Total      int
	Percentage float64
	Answers    []types.QuizAttemptAnswer
}

// ScoreQuiz grades answers against questions. Answers are matched by
// QuestionIndex; questions without an answer count as unanswered.
func ScoreQuiz(questions []types.QuizQuestion, answers []types.QuizAttemptAnswer) QuizScore {
	byIndex := make(map[int]types.QuizAttemptAnswer, len(answers))
	for _, a := range answers {
		if a.QuestionIndex >= 0 && a.QuestionIndex < len(questions) {
			byIndex[a.QuestionIndex] = a
		}
	}

	out := QuizScore{Total: len(questions), Answers: make([]types.QuizAttemptAnswer, 0, len(questions))}
	for i, q := range questions {
		a, ok := byIndex[i]
		if !ok {
			a = types.QuizAttemptAnswer{QuestionIndex: i}
		}
		a.IsCorrect = false
		switch gradeAnswer(q, a) {
		case gradeCorrect:
			a.IsCorrect = true
			out.Correct++
		case gradeIncorrect:
			out.Incorrect++
		default:
			out.Unanswered++
		}
		out.Answers = append(out.Answers, a)
	}
	out.Score = out.Correct
	out.Percentage = negativeMarkedPercentage(out.Correct, out.Incorrect, out.Total)
	return out
}

type grade int

const (
	gradeUnanswered grade = iota
	gradeCorrect
	gradeIncorrect
)

func gradeAnswer(q types.QuizQuestion, a types.QuizAttemptAnswer) grade {
	if q.Type == quiz.TypeShort {
		given := strings.ToLower(strings.TrimSpace(a.TextAnswer))
		if given == "" {
			return gradeUnanswered
		}
		want := strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
		if want != "" && (strings.Contains(given, want) || strings.Contains(want, given)) {
			return gradeCorrect
		}
		return gradeIncorrect
	}
	if a.SelectedIndex == nil || *a.SelectedIndex < 0 || *a.SelectedIndex >= len(q.Options) {
		return gradeUnanswered
	}
	if *a.SelectedIndex == q.CorrectAnswerIndex {
		return gradeCorrect
	}
	return gradeIncorrect
}

func negativeMarkedPercentage(correct, incorrect, total int) float64 {
	if total <= 0 {
		return 0
	}
	marks := math.Max(0, float64(correct)-0.5*float64(incorrect))
	return roundTo(marks/float64(total)*100, 2)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
