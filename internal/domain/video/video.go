package video

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const MaxHistory = 100

type Item struct {
	VideoID      string    `json:"videoId" bson:"videoId"`
	Title        string    `json:"title" bson:"title"`
	ChannelTitle string    `json:"channelTitle,omitempty" bson:"channelTitle,omitempty"`
	Thumbnail    string    `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	Topic        string    `json:"topic,omitempty" bson:"topic,omitempty"`
	At           time.Time `json:"at" bson:"at"`
}

type VideoLearning struct {
	ID      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id" bson:"-"`
	UserID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"userId" bson:"userId"`
	History datatypes.JSON `gorm:"column:history" json:"-" bson:"-"`
	Saved   datatypes.JSON `gorm:"column:saved" json:"-" bson:"-"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt" bson:"updatedAt"`
}

func (VideoLearning) TableName() string { return "video_learning" }

// Lists is the store-neutral view of a user's video lists.
type Lists struct {
	History []Item `json:"history"`
	Saved   []Item `json:"saved"`
}
