package pdf

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MaxUploadBytes is the inclusive upload limit (25 MiB).
const MaxUploadBytes int64 = 25 * 1024 * 1024

type UploadedPDF struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	Filename      string         `gorm:"column:filename;not null" json:"filename"`
	OriginalName  string         `gorm:"column:original_name;not null" json:"originalName"`
	StorageKey    string         `gorm:"column:storage_key;not null" json:"-"`
	Size          int64          `gorm:"column:size;not null" json:"size"`
	PageCount     int            `gorm:"column:page_count;not null;default:0" json:"pageCount"`
	ExtractedText string         `gorm:"column:extracted_text;type:text" json:"extractedText,omitempty"`
	Topics        datatypes.JSON `gorm:"column:topics" json:"topics"`
	// "text" for embedded text, "ocr" when Document AI produced it.
	ExtractionMethod string `gorm:"column:extraction_method" json:"extractionMethod"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (UploadedPDF) TableName() string { return "uploaded_pdf" }
