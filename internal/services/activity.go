package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/bytesolver-backend/internal/data/repos"
	"github.com/yungbote/bytesolver-backend/internal/jobs/worker"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

const chatExchangeMinutes = 2

// ActivityRecorder fans a completed user action out to doubts, statistics
// and streaks. Every method returns immediately; failures end up in the log.
type ActivityRecorder interface {
	ChatExchange(userID uuid.UUID, question, topic string)
	QuizAttempt(userID uuid.UUID, correct, total int, topic string)
	MockTest(userID uuid.UUID, examName string)
}

type activityRecorder struct {
	log     *logger.Logger
	queue   worker.Submitter
	doubts  DoubtService
	stats   StatsService
	streaks StreakService
}

func NewActivityRecorder(log *logger.Logger, queue worker.Submitter, doubts DoubtService, stats StatsService, streaks StreakService) ActivityRecorder {
	return &activityRecorder{
		log:     log.With("service", "ActivityRecorder"),
		queue:   queue,
		doubts:  doubts,
		stats:   stats,
		streaks: streaks,
	}
}

func (a *activityRecorder) ChatExchange(userID uuid.UUID, question, topic string) {
	if topic == "" {
		topic = ClassifyTopic(question)
	}
	a.queue.Submit("doubt.record", userID, func(ctx context.Context) error {
		return a.doubts.Record(ctx, userID, question, topic)
	})
	a.queue.Submit("stats.chat", userID, func(ctx context.Context) error {
		return a.stats.Record(ctx, userID, repos.StatisticsIncrement{
			DoubtsSolved: 1,
			MessagesSent: 1,
			StudyMinutes: chatExchangeMinutes,
		}, topic)
	})
	a.submitStreak(userID)
}

func (a *activityRecorder) QuizAttempt(userID uuid.UUID, correct, total int, topic string) {
	a.queue.Submit("stats.quiz", userID, func(ctx context.Context) error {
		var topics []string
		if topic != "" {
			topics = append(topics, topic)
		}
		return a.stats.Record(ctx, userID, repos.StatisticsIncrement{
			QuizzesTaken: 1,
			QuizCorrect:  correct,
			QuizTotal:    total,
		}, topics...)
	})
	a.submitStreak(userID)
}

func (a *activityRecorder) MockTest(userID uuid.UUID, examName string) {
	a.queue.Submit("stats.mocktest", userID, func(ctx context.Context) error {
		return a.stats.Record(ctx, userID, repos.StatisticsIncrement{MockTestsTaken: 1}, examName)
	})
	a.submitStreak(userID)
}

func (a *activityRecorder) submitStreak(userID uuid.UUID) {
	a.queue.Submit("streak.record", userID, func(ctx context.Context) error {
		_, err := a.streaks.Record(ctx, userID)
		return err
	})
}
