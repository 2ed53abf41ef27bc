package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/bytesolver-backend/internal/data/repos"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

const streakCASAttempts = 4

type StreakService interface {
	// Get returns the caller's streak, or a zero state if none exists.
	Get(ctx context.Context) (*types.StudyStreak, error)
	// Record marks userID active today. Repeated calls on the same day are no-ops.
	Record(ctx context.Context, userID uuid.UUID) (*types.StudyStreak, error)
}

type streakService struct {
	log  *logger.Logger
	repo repos.StudyStreakRepo
	loc  *time.Location
	now  Clock
}

func NewStreakService(log *logger.Logger, repo repos.StudyStreakRepo, loc *time.Location) StreakService {
	if loc == nil {
		loc = time.UTC
	}
	return &streakService{log: log.With("service", "StreakService"), repo: repo, loc: loc, now: systemClock}
}

func (ss *streakService) Get(ctx context.Context) (*types.StudyStreak, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	row, err := ss.repo.GetByUser(dbctx.New(ctx), userID)
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return newStreakRow(userID, ss.now()), nil
	}
	return row, err
}

func (ss *streakService) Record(ctx context.Context, userID uuid.UUID) (*types.StudyStreak, error) {
	dbc := dbctx.New(ctx)
	now := ss.now()
	today := now.In(ss.loc)
	todayKey := today.Format(types.DateLayout)

	row, err := ss.repo.CreateIfMissing(dbc, newStreakRow(userID, now))
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < streakCASAttempts; attempt++ {
		if row.LastActiveDate == todayKey {
			return row, nil
		}
		updates, ok, err := advanceStreak(row, today, ss.loc)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Stored date is after today (clock or timezone change); leave it.
			return row, nil
		}
		swapped, err := ss.repo.CompareAndSwap(dbc, userID, row.LastActiveDate, updates)
		if err != nil {
			return nil, err
		}
		if swapped {
			return ss.repo.GetByUser(dbc, userID)
		}
		row, err = ss.repo.GetByUser(dbc, userID)
		if err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("streak update for %s kept conflicting", userID)
}

func newStreakRow(userID uuid.UUID, now time.Time) *types.StudyStreak {
	return &types.StudyStreak{
		ID:             uuid.New(),
		UserID:         userID,
		WeeklyActivity: encodeWeek(make([]int, 7)),
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}
}

// advanceStreak computes the column updates for a first activity on today.
// ok is false when today is not after the stored date.
func advanceStreak(row *types.StudyStreak, today time.Time, loc *time.Location) (map[string]interface{}, bool, error) {
	current := 1
	week := make([]int, 7)
	if row.LastActiveDate != "" {
		prev, err := time.ParseInLocation(types.DateLayout, row.LastActiveDate, loc)
		if err != nil {
			return nil, false, fmt.Errorf("parse last_active_date %q: %w", row.LastActiveDate, err)
		}
		gap := dayDiff(prev, today)
		if gap <= 0 {
			return nil, false, nil
		}
		if gap == 1 {
			current = row.CurrentStreak + 1
		}
		if sameWeek(prev, today) {
			week = decodeWeek(row.WeeklyActivity)
		}
	}
	week[mondayIndex(today)] = 1

	longest := row.LongestStreak
	if current > longest {
		longest = current
	}
	return map[string]interface{}{
		"current_streak":   current,
		"longest_streak":   longest,
		"last_active_date": today.Format(types.DateLayout),
		"weekly_activity":  encodeWeek(week),
		"total_study_days": row.TotalStudyDays + 1,
	}, true, nil
}

// dayDiff counts calendar days from a to b, ignoring DST-length days.
func dayDiff(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func weekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -mondayIndex(t))
}

func sameWeek(a, b time.Time) bool {
	return weekStart(a).Equal(weekStart(b))
}

func decodeWeek(raw datatypes.JSON) []int {
	out := make([]int, 7)
	var stored []int
	if err := json.Unmarshal(raw, &stored); err == nil {
		copy(out, stored)
	}
	return out
}

func encodeWeek(week []int) datatypes.JSON {
	b, _ := json.Marshal(week)
	return datatypes.JSON(b)
}
