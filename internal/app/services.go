package app

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/bytesolver-backend/internal/data/db"
	"github.com/yungbote/bytesolver-backend/internal/data/examdata"
	"github.com/yungbote/bytesolver-backend/internal/jobs/worker"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/services"
	"github.com/yungbote/bytesolver-backend/internal/terminal"
)

type Services struct {
	SideEffects *worker.Pool

	Auth     services.AuthService
	Doubt    services.DoubtService
	Streak   services.StreakService
	Stats    services.StatsService
	Activity services.ActivityRecorder
	Chat     services.ChatService
	PDF      services.PDFService
	Quiz     services.QuizService
	MockTest services.MockTestService
	Ide      services.IdeService
	Video    services.VideoService

	Terminal *terminal.Runner
}

func wireServices(gdb *gorm.DB, log *logger.Logger, cfg Config, r Repos, c *Clients) (Services, error) {
	log.Info("Wiring services...")
	tx := db.NewGormTxRunner(gdb)

	tokens, err := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return Services{}, fmt.Errorf("init token service: %w", err)
	}

	pool := worker.NewPool(log, worker.Options{
		Concurrency: cfg.SideEffectWorkers,
		QueueSize:   cfg.SideEffectQueue,
		TaskTimeout: 10 * time.Second,
	})

	s := Services{SideEffects: pool}
	s.Auth = services.NewAuthService(log, r.User, tokens, c.Google)
	s.Doubt = services.NewDoubtService(log, r.Doubt)
	s.Streak = services.NewStreakService(log, r.Streak, cfg.StatsTimezone)
	s.Stats = services.NewStatsService(log, r.Statistics, r.Doubt, r.QuizAttempt, s.Streak, r.User, cfg.StatsTimezone)
	s.Activity = services.NewActivityRecorder(log, pool, s.Doubt, s.Stats, s.Streak)
	s.Chat = services.NewChatService(log, tx, r.ChatSession, r.ChatMessage, r.UploadedPDF, c.LLM, s.Activity)
	s.PDF = services.NewPDFService(log, tx, r.UploadedPDF, r.ChatSession, c.Store, c.OCR)
	s.Quiz = services.NewQuizService(log, r.Quiz, r.QuizAttempt, r.ChatSession, r.ChatMessage, c.LLM, s.Activity)
	s.MockTest = services.NewMockTestService(log, r.MockTest, examdata.MustLoadEmbedded(), s.Activity)
	s.Ide = services.NewIdeService(log, tx, r.IdeProject, r.IdeFile, r.ChatSession, r.ChatMessage, c.LLM)
	s.Video = services.NewVideoService(log, r.Video, c.YouTube, c.Cache)
	s.Terminal = terminal.NewRunner(log, terminal.Options{
		Timeout:      cfg.TerminalTimeout,
		MaxProcesses: cfg.TerminalMaxProcesses,
		TempDir:      cfg.TerminalTempDir,
	})
	return s, nil
}
