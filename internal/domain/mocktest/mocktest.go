package mocktest

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Question is the stored snapshot, answers included.
type Question struct {
	ID                 string   `json:"id"`
	Subject            string   `json:"subject"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation,omitempty"`
}

// PublicQuestion is what an in-progress test exposes.
type PublicQuestion struct {
	ID       string   `json:"id"`
	Subject  string   `json:"subject"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

func (q Question) Public() PublicQuestion {
	return PublicQuestion{ID: q.ID, Subject: q.Subject, Question: q.Question, Options: q.Options}
}

type SubjectResult struct {
	Subject    string  `json:"subject"`
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Incorrect  int     `json:"incorrect"`
	Unanswered int     `json:"unanswered"`
	Score      float64 `json:"score"`
}

type MockTest struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	ExamID   string    `gorm:"column:exam_id;not null;index" json:"examId"`
	ExamName string    `gorm:"column:exam_name;not null" json:"examName"`
	Status   string    `gorm:"column:status;not null;index" json:"status"`

	DurationMinutes int     `gorm:"column:duration_minutes;not null" json:"durationMinutes"`
	PositiveMarks   float64 `gorm:"column:positive_marks;not null" json:"positiveMarks"`
	NegativeMarks   float64 `gorm:"column:negative_marks;not null" json:"negativeMarks"`
	TotalQuestions  int     `gorm:"column:total_questions;not null" json:"totalQuestions"`
	MaxScore        float64 `gorm:"column:max_score;not null" json:"maxScore"`

	Questions datatypes.JSON `gorm:"column:questions;not null" json:"-"`
	Answers   datatypes.JSON `gorm:"column:answers" json:"-"`

	Score            float64        `gorm:"column:score;not null;default:0" json:"score"`
	CorrectAnswers   int            `gorm:"column:correct_answers;not null;default:0" json:"correctAnswers"`
	IncorrectAnswers int            `gorm:"column:incorrect_answers;not null;default:0" json:"incorrectAnswers"`
	Unanswered       int            `gorm:"column:unanswered;not null;default:0" json:"unanswered"`
	SubjectResults   datatypes.JSON `gorm:"column:subject_results" json:"subjectResults,omitempty"`
	TimeTaken        int            `gorm:"column:time_taken;not null;default:0" json:"timeTaken"`

	StartedAt   time.Time  `gorm:"not null" json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updatedAt"`
}

func (MockTest) TableName() string { return "mock_test" }
