package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	TypeMCQ   = "mcq"
	TypeShort = "short"

	OptionCount = 4
)

type Question struct {
	Type               string   `json:"type"`
	Question           string   `json:"question"`
	Options            []string `json:"options,omitempty"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	CorrectAnswer      string   `json:"correctAnswer,omitempty"`
	Explanation        string   `json:"explanation,omitempty"`
	Difficulty         string   `json:"difficulty,omitempty"`
}

type Quiz struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	SessionID  *uuid.UUID     `gorm:"type:uuid;index" json:"sessionId,omitempty"`
	Title      string         `gorm:"column:title;not null" json:"title"`
	Topic      string         `gorm:"column:topic" json:"topic"`
	Difficulty string         `gorm:"column:difficulty" json:"difficulty"`
	Questions  datatypes.JSON `gorm:"column:questions;not null" json:"questions"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"createdAt"`
}

func (Quiz) TableName() string { return "quiz" }

type AttemptAnswer struct {
	QuestionIndex int    `json:"questionIndex"`
	SelectedIndex *int   `json:"selectedIndex"`
	TextAnswer    string `json:"textAnswer,omitempty"`
	IsCorrect     bool   `json:"isCorrect"`
}

// QuizAttempt is written once per submission and never updated.
type QuizAttempt struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID uuid.UUID `gorm:"type:uuid;not null;index" json:"quizId"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`

	Answers datatypes.JSON `gorm:"column:answers;not null" json:"answers"`

	// Score is +1 per correct answer.
	Score      int `gorm:"column:score;not null" json:"score"`
	Total      int `gorm:"column:total;not null" json:"total"`
	Correct    int `gorm:"column:correct;not null" json:"correct"`
	Incorrect  int `gorm:"column:incorrect;not null" json:"incorrect"`
	Unanswered int `gorm:"column:unanswered;not null" json:"unanswered"`
	// Percentage uses +1 correct / -0.5 incorrect, floored at zero.
	Percentage float64 `gorm:"column:percentage;not null" json:"percentage"`
	TimeTaken  int     `gorm:"column:time_taken;not null;default:0" json:"timeTaken"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }
