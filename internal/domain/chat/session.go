package chat

import (
	"time"

	"github.com/google/uuid"
)

const (
	ModeSyllabus = "syllabus"
	ModeOpen     = "open"
)

func ValidMode(m string) bool { return m == ModeSyllabus || m == ModeOpen }

type ChatSession struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	Title    string     `gorm:"column:title;not null" json:"title"`
	Mode     string     `gorm:"column:mode;not null;default:open" json:"mode"`
	Category string     `gorm:"column:category" json:"category"`
	PDFID    *uuid.UUID `gorm:"type:uuid;column:pdf_id;index" json:"pdfId,omitempty"`

	// Set once the first exchange has produced a title.
	TitleGenerated bool `gorm:"column:title_generated;not null;default:false" json:"-"`

	LastMessageAt time.Time `gorm:"not null;index" json:"lastMessageAt"`
	CreatedAt     time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"not null" json:"updatedAt"`
}

func (ChatSession) TableName() string { return "chat_session" }
