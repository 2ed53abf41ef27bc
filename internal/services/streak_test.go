package services

import (
	"encoding/json"
	"testing"
	"time"

	"gorm.io/datatypes"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation(types.DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t.Add(10 * time.Hour)
}

func TestAdvanceStreak(t *testing.T) {
	row := &types.StudyStreak{CurrentStreak: 3, LongestStreak: 5, LastActiveDate: "2026-03-10", TotalStudyDays: 9, WeeklyActivity: encodeWeek([]int{0, 1, 0, 0, 0, 0, 0})}

	next, ok, err := advanceStreak(row, day("2026-03-11"), time.UTC)
	if err != nil || !ok {
		t.Fatalf("advanceStreak: ok=%v err=%v", ok, err)
	}
	if next["current_streak"] != 4 || next["longest_streak"] != 5 || next["total_study_days"] != 10 {
		t.Fatalf("consecutive day: %+v", next)
	}
	// 2026-03-10 is a Tuesday, 03-11 a Wednesday.
	var week []int
	_ = json.Unmarshal(next["weekly_activity"].(datatypes.JSON), &week)
	if len(week) != 7 || week[1] != 1 || week[2] != 1 {
		t.Fatalf("week = %v", week)
	}

	gap, ok, _ := advanceStreak(row, day("2026-03-20"), time.UTC)
	if !ok || gap["current_streak"] != 1 || gap["longest_streak"] != 5 {
		t.Fatalf("gap reset: %+v", gap)
	}
	_ = json.Unmarshal(gap["weekly_activity"].(datatypes.JSON), &week)
	if week[1] != 0 || week[4] != 1 {
		t.Fatalf("new week should reset slots, got %v", week)
	}

	if _, ok, _ := advanceStreak(row, day("2026-03-09"), time.UTC); ok {
		t.Fatal("earlier date must not advance")
	}
	first, ok, _ := advanceStreak(&types.StudyStreak{}, day("2026-03-11"), time.UTC)
	if !ok || first["current_streak"] != 1 || first["longest_streak"] != 1 {
		t.Fatalf("first activity: %+v", first)
	}
}

func TestStreakRecordIdempotentPerDay(t *testing.T) {
	e := newTestEnv(t)
	userID, ctx := e.user(t, "streak@example.com")
	ss := e.streakSvc.(*streakService)

	clock := day("2026-05-04")
	ss.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		if _, err := ss.Record(ctx, userID); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	row, err := ss.Get(ctx)
	if err != nil || row.CurrentStreak != 1 || row.TotalStudyDays != 1 {
		t.Fatalf("same day: err=%v row=%+v", err, row)
	}

	clock = day("2026-05-05")
	row, _ = ss.Record(ctx, userID)
	if row.CurrentStreak != 2 || row.LongestStreak != 2 {
		t.Fatalf("next day: %+v", row)
	}

	clock = day("2026-05-09")
	row, _ = ss.Record(ctx, userID)
	if row.CurrentStreak != 1 || row.LongestStreak != 2 || row.LastActiveDate != "2026-05-09" {
		t.Fatalf("after gap: %+v", row)
	}
}
