package progress

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

// Increment holds additive counter deltas for one day.
type Increment struct {
	DoubtsSolved   int
	MessagesSent   int
	StudyMinutes   int
	QuizzesTaken   int
	QuizCorrect    int
	QuizTotal      int
	MockTestsTaken int
}

type Totals struct {
	DoubtsSolved   int64 `json:"doubtsSolved"`
	MessagesSent   int64 `json:"messagesSent"`
	StudyMinutes   int64 `json:"studyMinutes"`
	QuizzesTaken   int64 `json:"quizzesTaken"`
	QuizCorrect    int64 `json:"quizCorrect"`
	QuizTotal      int64 `json:"quizTotal"`
	MockTestsTaken int64 `json:"mockTestsTaken"`
	ActiveDays     int64 `json:"activeDays"`
}

type LearningStatisticsRepo interface {
	// Increment adds inc to the (user, date) row, creating it if needed.
	Increment(dbc dbctx.Context, userID uuid.UUID, date string, inc Increment) error
	AddTopics(dbc dbctx.Context, userID uuid.UUID, date string, topics []string) error
	// ListRange returns rows with from <= date <= to; empty bounds are open.
	ListRange(dbc dbctx.Context, userID uuid.UUID, from, to string) ([]*types.LearningStatistics, error)
	Totals(dbc dbctx.Context, userID uuid.UUID) (*Totals, error)
}

type learningStatisticsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningStatisticsRepo(db *gorm.DB, baseLog *logger.Logger) LearningStatisticsRepo {
	return &learningStatisticsRepo{db: db, log: baseLog.With("repo", "LearningStatisticsRepo")}
}

var counterColumns = []string{
	"doubts_solved", "messages_sent", "study_minutes", "quizzes_taken",
	"quiz_correct", "quiz_total", "mock_tests_taken",
}

func (r *learningStatisticsRepo) Increment(dbc dbctx.Context, userID uuid.UUID, date string, inc Increment) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	row := &types.LearningStatistics{
		ID:             uuid.New(),
		UserID:         userID,
		Date:           date,
		DoubtsSolved:   inc.DoubtsSolved,
		MessagesSent:   inc.MessagesSent,
		StudyMinutes:   inc.StudyMinutes,
		QuizzesTaken:   inc.QuizzesTaken,
		QuizCorrect:    inc.QuizCorrect,
		QuizTotal:      inc.QuizTotal,
		MockTestsTaken: inc.MockTestsTaken,
		TopicsCovered:  datatypes.JSON([]byte(`[]`)),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	set := map[string]interface{}{"updated_at": now}
	for _, col := range counterColumns {
		set[col] = gorm.Expr("learning_statistics." + col + " + excluded." + col)
	}

	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(set),
		}).
		Create(row).Error
}

// maxTopicAttempts bounds the compare-and-swap retries in AddTopics.
const maxTopicAttempts = 5

// ErrTopicsContended is returned when AddTopics loses every compare-and-swap.
var ErrTopicsContended = errors.New("learning statistics: topics update contended")

func (r *learningStatisticsRepo) AddTopics(dbc dbctx.Context, userID uuid.UUID, date string, topics []string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(topics) == 0 {
		return nil
	}
	if err := r.Increment(dbc, userID, date, Increment{}); err != nil {
		return err
	}

	for attempt := 0; attempt < maxTopicAttempts; attempt++ {
		var row types.LearningStatistics
		if err := transaction.WithContext(dbc.Ctx).
			Where("user_id = ? AND date = ?", userID, date).
			Take(&row).Error; err != nil {
			return err
		}
		swapped, err := r.swapTopics(dbc, &row, topics)
		if err != nil {
			return err
		}
		if swapped {
			return nil
		}
	}
	return ErrTopicsContended
}

// swapTopics merges topics into row and writes the result only if the
// stored topics_version still matches the one read. A merge that adds
// nothing counts as swapped.
func (r *learningStatisticsRepo) swapTopics(dbc dbctx.Context, row *types.LearningStatistics, topics []string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	merged, changed := mergeTopics(DecodeTopics(row.TopicsCovered), topics)
	if !changed {
		return true, nil
	}
	b, err := json.Marshal(merged)
	if err != nil {
		return false, err
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.LearningStatistics{}).
		Where("id = ? AND topics_version = ?", row.ID, row.TopicsVersion).
		Updates(map[string]interface{}{
			"topics_covered": datatypes.JSON(b),
			"topics_version": gorm.Expr("topics_version + 1"),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func mergeTopics(existing, topics []string) ([]string, bool) {
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[t] = true
	}
	changed := false
	for _, t := range topics {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		existing = append(existing, t)
		changed = true
	}
	return existing, changed
}

func (r *learningStatisticsRepo) ListRange(dbc dbctx.Context, userID uuid.UUID, from, to string) ([]*types.LearningStatistics, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}
	var out []*types.LearningStatistics
	if err := q.Order("date ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningStatisticsRepo) Totals(dbc dbctx.Context, userID uuid.UUID) (*Totals, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out Totals
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.LearningStatistics{}).
		Select(`COALESCE(SUM(doubts_solved), 0) AS doubts_solved,
			COALESCE(SUM(messages_sent), 0) AS messages_sent,
			COALESCE(SUM(study_minutes), 0) AS study_minutes,
			COALESCE(SUM(quizzes_taken), 0) AS quizzes_taken,
			COALESCE(SUM(quiz_correct), 0) AS quiz_correct,
			COALESCE(SUM(quiz_total), 0) AS quiz_total,
			COALESCE(SUM(mock_tests_taken), 0) AS mock_tests_taken,
			COUNT(*) AS active_days`).
		Where("user_id = ?", userID).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DecodeTopics tolerates empty or malformed JSON.
func DecodeTopics(raw datatypes.JSON) []string {
	var out []string
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
