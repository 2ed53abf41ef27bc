package doubt

import (
	"time"

	"github.com/google/uuid"
)

type Doubt struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_doubt_user_question,priority:1" json:"userId"`
	// Normalised form; the unique key.
	Question    string    `gorm:"column:question;not null;uniqueIndex:idx_doubt_user_question,priority:2" json:"question"`
	DisplayText string    `gorm:"column:display_text;type:text" json:"displayText"`
	Topic       string    `gorm:"column:topic;index" json:"topic"`
	Frequency   int       `gorm:"column:frequency;not null;default:1" json:"frequency"`
	LastAskedAt time.Time `gorm:"column:last_asked_at;not null" json:"lastAskedAt"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}

func (Doubt) TableName() string { return "doubt" }
