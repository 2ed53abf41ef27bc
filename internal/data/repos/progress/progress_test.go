package progress

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/bytesolver-backend/internal/data/repos/testutil"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
)

func TestLearningStatisticsIncrementIsAdditive(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewLearningStatisticsRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "stats-repo@example.com")

	for i := 0; i < 3; i++ {
		if err := repo.Increment(dbc, u.ID, "2026-03-02", Increment{DoubtsSolved: 1, MessagesSent: 1, StudyMinutes: 2}); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	if err := repo.Increment(dbc, u.ID, "2026-03-03", Increment{QuizzesTaken: 1, QuizCorrect: 3, QuizTotal: 5}); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if err := repo.AddTopics(dbc, u.ID, "2026-03-02", []string{"physics", "physics", "chemistry"}); err != nil {
		t.Fatalf("AddTopics: %v", err)
	}
	if err := repo.AddTopics(dbc, u.ID, "2026-03-02", []string{"chemistry"}); err != nil {
		t.Fatalf("AddTopics: %v", err)
	}

	rows, err := repo.ListRange(dbc, u.ID, "2026-03-01", "2026-03-02")
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListRange: err=%v len=%d", err, len(rows))
	}
	if rows[0].DoubtsSolved != 3 || rows[0].MessagesSent != 3 || rows[0].StudyMinutes != 6 {
		t.Fatalf("unexpected counters: %+v", rows[0])
	}
	if topics := DecodeTopics(rows[0].TopicsCovered); len(topics) != 2 {
		t.Fatalf("expected 2 merged topics, got %v", topics)
	}

	totals, err := repo.Totals(dbc, u.ID)
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if totals.DoubtsSolved != 3 || totals.QuizTotal != 5 || totals.ActiveDays != 2 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

func TestLearningStatisticsAddTopicsRejectsStaleWrite(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewLearningStatisticsRepo(db, testutil.Logger(t)).(*learningStatisticsRepo)
	u := testutil.SeedUser(t, ctx, tx, "stats-topics-cas@example.com")
	const date = "2026-04-10"

	if err := repo.AddTopics(dbc, u.ID, date, []string{"algebra"}); err != nil {
		t.Fatalf("AddTopics: %v", err)
	}
	var stale types.LearningStatistics
	if err := tx.Where("user_id = ? AND date = ?", u.ID, date).Take(&stale).Error; err != nil {
		t.Fatalf("read row: %v", err)
	}

	// A concurrent writer lands between the read and the write.
	if err := repo.AddTopics(dbc, u.ID, date, []string{"optics"}); err != nil {
		t.Fatalf("AddTopics: %v", err)
	}
	swapped, err := repo.swapTopics(dbc, &stale, []string{"genetics"})
	if err != nil {
		t.Fatalf("swapTopics: %v", err)
	}
	if swapped {
		t.Fatalf("stale write must not overwrite a newer topics list")
	}

	if err := repo.AddTopics(dbc, u.ID, date, []string{"genetics"}); err != nil {
		t.Fatalf("AddTopics: %v", err)
	}
	rows, err := repo.ListRange(dbc, u.ID, date, date)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListRange: err=%v len=%d", err, len(rows))
	}
	got := map[string]bool{}
	for _, topic := range DecodeTopics(rows[0].TopicsCovered) {
		got[topic] = true
	}
	for _, want := range []string{"algebra", "optics", "genetics"} {
		if !got[want] {
			t.Fatalf("topic %q lost, have %v", want, DecodeTopics(rows[0].TopicsCovered))
		}
	}
	if rows[0].TopicsVersion != 3 {
		t.Fatalf("expected topics_version 3, got %d", rows[0].TopicsVersion)
	}
}

func TestStudyStreakCompareAndSwap(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewStudyStreakRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "streak-repo@example.com")

	if _, err := repo.GetByUser(dbc, u.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("GetByUser: expected ErrNotFound, got %v", err)
	}

	row, err := repo.CreateIfMissing(dbc, &types.StudyStreak{UserID: u.ID, WeeklyActivity: datatypes.JSON([]byte(`[0,0,0,0,0,0,0]`))})
	if err != nil {
		t.Fatalf("CreateIfMissing: %v", err)
	}
	again, err := repo.CreateIfMissing(dbc, &types.StudyStreak{UserID: u.ID})
	if err != nil || again.ID != row.ID {
		t.Fatalf("CreateIfMissing (again): err=%v id=%v want %v", err, again.ID, row.ID)
	}

	ok, err := repo.CompareAndSwap(dbc, u.ID, "", map[string]interface{}{"current_streak": 1, "last_active_date": "2026-03-02"})
	if err != nil || !ok {
		t.Fatalf("CompareAndSwap: ok=%v err=%v", ok, err)
	}
	ok, err = repo.CompareAndSwap(dbc, u.ID, "", map[string]interface{}{"current_streak": 5})
	if err != nil || ok {
		t.Fatalf("CompareAndSwap (stale): ok=%v err=%v", ok, err)
	}
	got, _ := repo.GetByUser(dbc, u.ID)
	if got.CurrentStreak != 1 || got.LastActiveDate != "2026-03-02" {
		t.Fatalf("unexpected streak: %+v", got)
	}
}
