package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/bytesolver-backend/internal/clients/llm/llmtest"
	"github.com/yungbote/bytesolver-backend/internal/data/db"
	"github.com/yungbote/bytesolver-backend/internal/data/examdata"
	"github.com/yungbote/bytesolver-backend/internal/data/repos"
	"github.com/yungbote/bytesolver-backend/internal/data/repos/testutil"
	"github.com/yungbote/bytesolver-backend/internal/jobs/worker"
	"github.com/yungbote/bytesolver-backend/internal/pkg/ctxutil"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
	"github.com/yungbote/bytesolver-backend/internal/platform/objectstore"
)

type testEnv struct {
	db       *gorm.DB
	model    *llmtest.Fake
	storeDir string

	users    repos.UserRepo
	sessions repos.ChatSessionRepo
	messages repos.ChatMessageRepo
	pdfs     repos.UploadedPDFRepo
	doubts   repos.DoubtRepo
	stats    repos.LearningStatisticsRepo
	streaks  repos.StudyStreakRepo

	doubtSvc  DoubtService
	streakSvc StreakService
	statsSvc  StatsService
	activity  ActivityRecorder
	chat      ChatService
	quiz      QuizService
	mock      MockTestService
	pdf       PDFService
	ide       IdeService
}

// newTestEnv wires every service against a fresh SQLite database with side
// effects running inline.
func newTestEnv(t *testing.T, replies ...string) *testEnv {
	t.Helper()
	gdb := testutil.FreshDB(t)
	log := testutil.Logger(t)
	tx := db.NewGormTxRunner(gdb)

	e := &testEnv{
		db:       gdb,
		model:    llmtest.New(replies...),
		users:    repos.NewUserRepo(gdb, log),
		sessions: repos.NewChatSessionRepo(gdb, log),
		messages: repos.NewChatMessageRepo(gdb, log),
		pdfs:     repos.NewUploadedPDFRepo(gdb, log),
		doubts:   repos.NewDoubtRepo(gdb, log),
		stats:    repos.NewLearningStatisticsRepo(gdb, log),
		streaks:  repos.NewStudyStreakRepo(gdb, log),
	}
	quizzes := repos.NewQuizRepo(gdb, log)
	attempts := repos.NewQuizAttemptRepo(gdb, log)

	e.doubtSvc = NewDoubtService(log, e.doubts)
	e.streakSvc = NewStreakService(log, e.streaks, time.UTC)
	e.statsSvc = NewStatsService(log, e.stats, e.doubts, attempts, e.streakSvc, e.users, time.UTC)
	e.activity = NewActivityRecorder(log, worker.Inline{Log: log}, e.doubtSvc, e.statsSvc, e.streakSvc)
	e.chat = NewChatService(log, tx, e.sessions, e.messages, e.pdfs, e.model, e.activity)
	e.quiz = NewQuizService(log, quizzes, attempts, e.sessions, e.messages, e.model, e.activity)
	e.mock = NewMockTestService(log, repos.NewMockTestRepo(gdb, log), examdata.MustLoadEmbedded(), e.activity)

	e.storeDir = t.TempDir()
	store, err := objectstore.NewLocal(log, e.storeDir)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	e.pdf = NewPDFService(log, tx, e.pdfs, e.sessions, store, nil)
	e.ide = NewIdeService(log, tx, repos.NewIdeProjectRepo(gdb, log), repos.NewIdeFileRepo(gdb, log), e.sessions, e.messages, e.model)
	return e
}

// user seeds an account and returns a context authenticated as it.
func (e *testEnv) user(t *testing.T, email string) (uuid.UUID, context.Context) {
	t.Helper()
	u := testutil.SeedUser(t, context.Background(), e.db, email)
	return u.ID, authed(u.ID)
}

func authed(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
}

func wantAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	ae, ok := apierr.As(err)
	if !ok {
		t.Fatalf("expected api error %d %s, got %v", status, code, err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("expected %d %s, got %d %s (%v)", status, code, ae.Status, ae.Code, err)
	}
}
