package ide

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type IdeProject struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	Name           string     `gorm:"column:name;not null" json:"name"`
	Description    string     `gorm:"column:description" json:"description"`
	Language       string     `gorm:"column:language;not null" json:"language"`
	LastOpenFileID *uuid.UUID `gorm:"type:uuid;column:last_open_file_id" json:"lastOpenFileId,omitempty"`
	// Assistant mode -> chat session id.
	ChatSessions datatypes.JSON `gorm:"column:chat_sessions" json:"chatSessions"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updatedAt"`
}

func (IdeProject) TableName() string { return "ide_project" }

type IdeFile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ide_file_project_path,priority:1" json:"projectId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Path      string    `gorm:"column:path;not null;uniqueIndex:idx_ide_file_project_path,priority:2" json:"path"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	Language  string    `gorm:"column:language;not null" json:"language"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (IdeFile) TableName() string { return "ide_file" }
