package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DateLayout is the calendar-day key used by statistics and streaks.
const DateLayout = "2006-01-02"

type LearningStatistics struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_learning_statistics_user_date,priority:1" json:"userId"`
	Date   string    `gorm:"column:date;not null;uniqueIndex:idx_learning_statistics_user_date,priority:2" json:"date"`

	DoubtsSolved   int            `gorm:"column:doubts_solved;not null;default:0" json:"doubtsSolved"`
	MessagesSent   int            `gorm:"column:messages_sent;not null;default:0" json:"messagesSent"`
	StudyMinutes   int            `gorm:"column:study_minutes;not null;default:0" json:"studyMinutes"`
	QuizzesTaken   int            `gorm:"column:quizzes_taken;not null;default:0" json:"quizzesTaken"`
	QuizCorrect    int            `gorm:"column:quiz_correct;not null;default:0" json:"quizCorrect"`
	QuizTotal      int            `gorm:"column:quiz_total;not null;default:0" json:"quizTotal"`
	MockTestsTaken int            `gorm:"column:mock_tests_taken;not null;default:0" json:"mockTestsTaken"`
	TopicsCovered  datatypes.JSON `gorm:"column:topics_covered" json:"topicsCovered"`
	TopicsVersion  int            `gorm:"column:topics_version;not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (LearningStatistics) TableName() string { return "learning_statistics" }
