package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/bytesolver-backend/internal/data/repos"
	"github.com/yungbote/bytesolver-backend/internal/data/repos/progress"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
)

const (
	DefaultTimelineDays = 30
	MaxTimelineDays     = 365
	MaxStudyMinutes     = 720
	recentAttemptsLimit = 10
)

type StatsSummary struct {
	Totals       repos.StatisticsTotals  `json:"totals"`
	Streak       *types.StudyStreak      `json:"streak"`
	QuizAccuracy float64                 `json:"quizAccuracy"`
	DoubtCount   int64                   `json:"doubtCount"`
	TopTopics    []repos.DoubtTopicCount `json:"topTopics"`
	Today        TimelineDay             `json:"today"`
}

type TimelineDay struct {
	Date           string   `json:"date"`
	DoubtsSolved   int      `json:"doubtsSolved"`
	MessagesSent   int      `json:"messagesSent"`
	StudyMinutes   int      `json:"studyMinutes"`
	QuizzesTaken   int      `json:"quizzesTaken"`
	QuizCorrect    int      `json:"quizCorrect"`
	QuizTotal      int      `json:"quizTotal"`
	MockTestsTaken int      `json:"mockTestsTaken"`
	Topics         []string `json:"topics"`
}

type TopicStat struct {
	Topic string `json:"topic"`
	// Doubts is the summed frequency of doubts tagged with the topic.
	Doubts int64 `json:"doubts"`
	// Days counts days on which the topic appeared in activity.
	Days int `json:"days"`
}

type QuizStats struct {
	QuizzesTaken   int64                `json:"quizzesTaken"`
	QuizCorrect    int64                `json:"quizCorrect"`
	QuizTotal      int64                `json:"quizTotal"`
	Accuracy       float64              `json:"accuracy"`
	MockTestsTaken int64                `json:"mockTestsTaken"`
	RecentAttempts []*types.QuizAttempt `json:"recentAttempts"`
}

type StatsService interface {
	// Record adds inc and topics to today's row for userID.
	Record(ctx context.Context, userID uuid.UUID, inc repos.StatisticsIncrement, topics ...string) error
	Summary(ctx context.Context) (*StatsSummary, error)
	Timeline(ctx context.Context, days int) ([]TimelineDay, error)
	Topics(ctx context.Context) ([]TopicStat, error)
	Quiz(ctx context.Context) (*QuizStats, error)
	AddStudyTime(ctx context.Context, minutes int) (*TimelineDay, error)
	// Report renders the caller's progress as a PDF document.
	Report(ctx context.Context) ([]byte, error)
}

type statsService struct {
	log         *logger.Logger
	statsRepo   repos.LearningStatisticsRepo
	doubtRepo   repos.DoubtRepo
	attemptRepo repos.QuizAttemptRepo
	streaks     StreakService
	userRepo    repos.UserRepo
	loc         *time.Location
	now         Clock
}

func NewStatsService(
	log *logger.Logger,
	statsRepo repos.LearningStatisticsRepo,
	doubtRepo repos.DoubtRepo,
	attemptRepo repos.QuizAttemptRepo,
	streaks StreakService,
	userRepo repos.UserRepo,
	loc *time.Location,
) StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &statsService{
		log:         log.With("service", "StatsService"),
		statsRepo:   statsRepo,
		doubtRepo:   doubtRepo,
		attemptRepo: attemptRepo,
		streaks:     streaks,
		userRepo:    userRepo,
		loc:         loc,
		now:         systemClock,
	}
}

func (s *statsService) today() string {
	return s.now().In(s.loc).Format(types.DateLayout)
}

func (s *statsService) Record(ctx context.Context, userID uuid.UUID, inc repos.StatisticsIncrement, topics ...string) error {
	dbc := dbctx.New(ctx)
	date := s.today()
	if err := s.statsRepo.Increment(dbc, userID, date, inc); err != nil {
		return err
	}
	return s.statsRepo.AddTopics(dbc, userID, date, topics)
}

func (s *statsService) Summary(ctx context.Context) (*StatsSummary, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	today := s.today()
	out := &StatsSummary{Today: TimelineDay{Date: today, Topics: []string{}}}

	g, gctx := errgroup.WithContext(ctx)
	gdbc := dbctx.New(gctx)
	g.Go(func() error {
		totals, err := s.statsRepo.Totals(gdbc, userID)
		if err != nil {
			return err
		}
		out.Totals = *totals
		return nil
	})
	g.Go(func() error {
		streak, err := s.streaks.Get(gctx)
		if err != nil {
			return err
		}
		out.Streak = streak
		return nil
	})
	g.Go(func() error {
		n, err := s.doubtRepo.Count(gdbc, userID)
		out.DoubtCount = n
		return err
	})
	g.Go(func() error {
		counts, err := s.doubtRepo.TopicCounts(gdbc, userID)
		if err != nil {
			return err
		}
		if len(counts) > 5 {
			counts = counts[:5]
		}
		out.TopTopics = counts
		return nil
	})
	g.Go(func() error {
		rows, err := s.statsRepo.ListRange(gdbc, userID, today, today)
		if err != nil {
			return err
		}
		if len(rows) == 1 {
			out.Today = toTimelineDay(rows[0])
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("Summary fan-out failed", "user_id", userID, "error", err)
		return nil, err
	}
	out.QuizAccuracy = accuracy(out.Totals.QuizCorrect, out.Totals.QuizTotal)
	if out.TopTopics == nil {
		out.TopTopics = []repos.DoubtTopicCount{}
	}
	return out, nil
}

func (s *statsService) Timeline(ctx context.Context, days int) ([]TimelineDay, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if days == 0 {
		days = DefaultTimelineDays
	}
	if days < 1 || days > MaxTimelineDays {
		return nil, apierr.Validation("days must be between 1 and 365")
	}
	end := s.now().In(s.loc)
	start := end.AddDate(0, 0, -(days - 1))
	rows, err := s.statsRepo.ListRange(dbctx.New(ctx), userID, start.Format(types.DateLayout), end.Format(types.DateLayout))
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]*types.LearningStatistics, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r
	}
	out := make([]TimelineDay, 0, days)
	for d := 0; d < days; d++ {
		key := start.AddDate(0, 0, d).Format(types.DateLayout)
		if r, ok := byDate[key]; ok {
			out = append(out, toTimelineDay(r))
			continue
		}
		out = append(out, TimelineDay{Date: key, Topics: []string{}})
	}
	return out, nil
}

func (s *statsService) Topics(ctx context.Context) ([]TopicStat, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	counts, err := s.doubtRepo.TopicCounts(dbc, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.statsRepo.ListRange(dbc, userID, "", "")
	if err != nil {
		return nil, err
	}

	index := map[string]*TopicStat{}
	var order []string
	get := func(topic string) *TopicStat {
		if ts, ok := index[topic]; ok {
			return ts
		}
		ts := &TopicStat{Topic: topic}
		index[topic] = ts
		order = append(order, topic)
		return ts
	}
	for _, c := range counts {
		if c.Topic == "" {
			continue
		}
		get(c.Topic).Doubts = c.Count
	}
	for _, r := range rows {
		for _, t := range progress.DecodeTopics(r.TopicsCovered) {
			get(t).Days++
		}
	}

	out := make([]TopicStat, 0, len(order))
	for _, t := range order {
		out = append(out, *index[t])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Doubts != out[j].Doubts {
			return out[i].Doubts > out[j].Doubts
		}
		return out[i].Days > out[j].Days
	})
	return out, nil
}

func (s *statsService) Quiz(ctx context.Context) (*QuizStats, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	totals, err := s.statsRepo.Totals(dbc, userID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attemptRepo.ListByUser(dbc, userID, recentAttemptsLimit)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []*types.QuizAttempt{}
	}
	return &QuizStats{
		QuizzesTaken:   totals.QuizzesTaken,
		QuizCorrect:    totals.QuizCorrect,
		QuizTotal:      totals.QuizTotal,
		Accuracy:       accuracy(totals.QuizCorrect, totals.QuizTotal),
		MockTestsTaken: totals.MockTestsTaken,
		RecentAttempts: attempts,
	}, nil
}

func (s *statsService) AddStudyTime(ctx context.Context, minutes int) (*TimelineDay, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if minutes < 1 || minutes > MaxStudyMinutes {
		return nil, apierr.Validation("minutes must be between 1 and 720")
	}
	if err := s.Record(ctx, userID, repos.StatisticsIncrement{StudyMinutes: minutes}); err != nil {
		return nil, err
	}
	if _, err := s.streaks.Record(ctx, userID); err != nil {
		s.log.Warn("Streak update after study time failed", "user_id", userID, "error", err)
	}
	today := s.today()
	rows, err := s.statsRepo.ListRange(dbctx.New(ctx), userID, today, today)
	if err != nil {
		return nil, err
	}
	day := TimelineDay{Date: today, Topics: []string{}}
	if len(rows) == 1 {
		day = toTimelineDay(rows[0])
	}
	return &day, nil
}

func toTimelineDay(r *types.LearningStatistics) TimelineDay {
	topics := progress.DecodeTopics(r.TopicsCovered)
	if topics == nil {
		topics = []string{}
	}
	return TimelineDay{
		Date:           r.Date,
		DoubtsSolved:   r.DoubtsSolved,
		MessagesSent:   r.MessagesSent,
		StudyMinutes:   r.StudyMinutes,
		QuizzesTaken:   r.QuizzesTaken,
		QuizCorrect:    r.QuizCorrect,
		QuizTotal:      r.QuizTotal,
		MockTestsTaken: r.MockTestsTaken,
		Topics:         topics,
	}
}

// accuracy is a percentage rounded to one decimal.
func accuracy(correct, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return roundTo(float64(correct)/float64(total)*100, 1)
}
