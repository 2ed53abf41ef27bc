package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type StudyStreak struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`

	CurrentStreak  int    `gorm:"column:current_streak;not null;default:0" json:"currentStreak"`
	LongestStreak  int    `gorm:"column:longest_streak;not null;default:0" json:"longestStreak"`
	LastActiveDate string `gorm:"column:last_active_date" json:"lastActiveDate"`
	// Seven Monday-first slots for the week containing LastActiveDate.
	WeeklyActivity datatypes.JSON `gorm:"column:weekly_activity" json:"weeklyActivity"`
	TotalStudyDays int            `gorm:"column:total_study_days;not null;default:0" json:"totalStudyDays"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (StudyStreak) TableName() string { return "study_streak" }
