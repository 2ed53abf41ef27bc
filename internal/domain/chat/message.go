package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_message_session_created,priority:1" json:"sessionId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`

	Role    string `gorm:"column:role;not null" json:"role"`
	Content string `gorm:"column:content;type:text;not null" json:"content"`
	// Optional citations, e.g. the syllabus file a reply was grounded on.
	Sources datatypes.JSON `gorm:"column:sources" json:"sources,omitempty"`

	CreatedAt time.Time `gorm:"not null;index:idx_chat_message_session_created,priority:2" json:"createdAt"`
}

func (ChatMessage) TableName() string { return "chat_message" }
