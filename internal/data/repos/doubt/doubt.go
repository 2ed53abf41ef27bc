package doubt

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

const (
	SortRecent   = "recent"
	SortFrequent = "frequent"
)

type TopicCount struct {
	Topic string `json:"topic"`
	Count int64  `json:"count"`
}

type DoubtRepo interface {
	// Upsert inserts d or, when (user, question) exists, bumps its frequency
	// and refreshes topic, display text and last-asked time.
	Upsert(dbc dbctx.Context, d *types.Doubt) error
	List(dbc dbctx.Context, userID uuid.UUID, sort string, limit int) ([]*types.Doubt, error)
	Count(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	TopicCounts(dbc dbctx.Context, userID uuid.UUID) ([]TopicCount, error)
}

type doubtRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDoubtRepo(db *gorm.DB, baseLog *logger.Logger) DoubtRepo {
	return &doubtRepo{db: db, log: baseLog.With("repo", "DoubtRepo")}
}

func (r *doubtRepo) Upsert(dbc dbctx.Context, d *types.Doubt) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.LastAskedAt.IsZero() {
		d.LastAskedAt = now
	}
	d.Frequency = 1
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "question"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"frequency":     gorm.Expr("doubt.frequency + 1"),
				"topic":         gorm.Expr("excluded.topic"),
				"display_text":  gorm.Expr("excluded.display_text"),
				"last_asked_at": gorm.Expr("excluded.last_asked_at"),
				"updated_at":    now,
			}),
		}).
		Create(d).Error
}

func (r *doubtRepo) List(dbc dbctx.Context, userID uuid.UUID, sort string, limit int) ([]*types.Doubt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := transaction.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if sort == SortFrequent {
		q = q.Order("frequency DESC").Order("last_asked_at DESC")
	} else {
		q = q.Order("last_asked_at DESC")
	}
	var out []*types.Doubt
	if err := q.Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *doubtRepo) Count(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Doubt{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *doubtRepo) TopicCounts(dbc dbctx.Context, userID uuid.UUID) ([]TopicCount, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []TopicCount
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Doubt{}).
		Select("topic, COALESCE(SUM(frequency), 0) AS count").
		Where("user_id = ?", userID).
		Group("topic").
		Order("count DESC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
