package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/bytesolver-backend/internal/clients/mongo"
	"github.com/yungbote/bytesolver-backend/internal/data/repos"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

type Repos struct {
	User        repos.UserRepo
	ChatSession repos.ChatSessionRepo
	ChatMessage repos.ChatMessageRepo
	UploadedPDF repos.UploadedPDFRepo
	Quiz        repos.QuizRepo
	QuizAttempt repos.QuizAttemptRepo
	MockTest    repos.MockTestRepo
	Statistics  repos.LearningStatisticsRepo
	Streak      repos.StudyStreakRepo
	Doubt       repos.DoubtRepo
	IdeProject  repos.IdeProjectRepo
	IdeFile     repos.IdeFileRepo
	Video       repos.VideoStore
}

// wireRepos keeps video lists in Mongo when a client is given, else in the
// relational store with everything else.
func wireRepos(ctx context.Context, db *gorm.DB, m *mongo.Client, log *logger.Logger) (Repos, error) {
	log.Info("Wiring repos...")
	r := Repos{
		User:        repos.NewUserRepo(db, log),
		ChatSession: repos.NewChatSessionRepo(db, log),
		ChatMessage: repos.NewChatMessageRepo(db, log),
		UploadedPDF: repos.NewUploadedPDFRepo(db, log),
		Quiz:        repos.NewQuizRepo(db, log),
		QuizAttempt: repos.NewQuizAttemptRepo(db, log),
		MockTest:    repos.NewMockTestRepo(db, log),
		Statistics:  repos.NewLearningStatisticsRepo(db, log),
		Streak:      repos.NewStudyStreakRepo(db, log),
		Doubt:       repos.NewDoubtRepo(db, log),
		IdeProject:  repos.NewIdeProjectRepo(db, log),
		IdeFile:     repos.NewIdeFileRepo(db, log),
	}
	if m == nil {
		r.Video = repos.NewGormVideoStore(db, log)
		return r, nil
	}
	store, err := repos.NewMongoVideoStore(ctx, m.Database(), log)
	if err != nil {
		return Repos{}, fmt.Errorf("init mongo video store: %w", err)
	}
	r.Video = store
	return r, nil
}
