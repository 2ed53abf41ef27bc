package repos

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/yungbote/bytesolver-backend/internal/data/repos/chat"
	"github.com/yungbote/bytesolver-backend/internal/data/repos/doubt"
	"github.com/yungbote/bytesolver-backend/internal/data/repos/ide"
	"github.com/yungbote/bytesolver-backend/internal/data/repos/mocktest"
	"github.com/yungbote/bytesolver-backend/internal/data/repos/pdf"
	"github.com/yungbote/bytesolver-backend/internal/data/repos/progress"
	"github.com/yungbote/bytesolver-backend/internal/data/repos/quiz"
	"github.com/yungbote/bytesolver-backend/internal/data/repos/user"
	"github.com/yungbote/bytesolver-backend/internal/data/repos/video"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

type UserRepo = user.UserRepo

type ChatSessionRepo = chat.ChatSessionRepo
type ChatMessageRepo = chat.ChatMessageRepo

type UploadedPDFRepo = pdf.UploadedPDFRepo

type QuizRepo = quiz.QuizRepo
type QuizAttemptRepo = quiz.QuizAttemptRepo

type MockTestRepo = mocktest.MockTestRepo

type LearningStatisticsRepo = progress.LearningStatisticsRepo
type StatisticsIncrement = progress.Increment
type StatisticsTotals = progress.Totals
type StudyStreakRepo = progress.StudyStreakRepo

type DoubtRepo = doubt.DoubtRepo
type DoubtTopicCount = doubt.TopicCount

type IdeProjectRepo = ide.IdeProjectRepo
type IdeFileRepo = ide.IdeFileRepo

type VideoStore = video.Store

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewChatSessionRepo(db *gorm.DB, baseLog *logger.Logger) ChatSessionRepo {
	return chat.NewChatSessionRepo(db, baseLog)
}
func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return chat.NewChatMessageRepo(db, baseLog)
}

func NewUploadedPDFRepo(db *gorm.DB, baseLog *logger.Logger) UploadedPDFRepo {
	return pdf.NewUploadedPDFRepo(db, baseLog)
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return quiz.NewQuizRepo(db, baseLog)
}
func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return quiz.NewQuizAttemptRepo(db, baseLog)
}

func NewMockTestRepo(db *gorm.DB, baseLog *logger.Logger) MockTestRepo {
	return mocktest.NewMockTestRepo(db, baseLog)
}

func NewLearningStatisticsRepo(db *gorm.DB, baseLog *logger.Logger) LearningStatisticsRepo {
	return progress.NewLearningStatisticsRepo(db, baseLog)
}
func NewStudyStreakRepo(db *gorm.DB, baseLog *logger.Logger) StudyStreakRepo {
	return progress.NewStudyStreakRepo(db, baseLog)
}

func NewDoubtRepo(db *gorm.DB, baseLog *logger.Logger) DoubtRepo {
	return doubt.NewDoubtRepo(db, baseLog)
}

func NewIdeProjectRepo(db *gorm.DB, baseLog *logger.Logger) IdeProjectRepo {
	return ide.NewIdeProjectRepo(db, baseLog)
}
func NewIdeFileRepo(db *gorm.DB, baseLog *logger.Logger) IdeFileRepo {
	return ide.NewIdeFileRepo(db, baseLog)
}

func NewGormVideoStore(db *gorm.DB, baseLog *logger.Logger) VideoStore {
	return video.NewGormStore(db, baseLog)
}

// NewMongoVideoStore keeps video lists in MongoDB and ensures its index.
func NewMongoVideoStore(ctx context.Context, db *mongo.Database, baseLog *logger.Logger) (VideoStore, error) {
	return video.NewMongoStore(ctx, db, baseLog)
}
