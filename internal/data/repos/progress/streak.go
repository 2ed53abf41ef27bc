package progress

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

type StudyStreakRepo interface {
	GetByUser(dbc dbctx.Context, userID uuid.UUID) (*types.StudyStreak, error)
	// CreateIfMissing inserts row unless the user already has one, then
	// returns the stored row either way.
	CreateIfMissing(dbc dbctx.Context, row *types.StudyStreak) (*types.StudyStreak, error)
	// CompareAndSwap applies updates only if last_active_date still equals
	// prevDate. It reports whether the row was updated.
	CompareAndSwap(dbc dbctx.Context, userID uuid.UUID, prevDate string, updates map[string]interface{}) (bool, error)
}

type studyStreakRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudyStreakRepo(db *gorm.DB, baseLog *logger.Logger) StudyStreakRepo {
	return &studyStreakRepo{db: db, log: baseLog.With("repo", "StudyStreakRepo")}
}

func (r *studyStreakRepo) GetByUser(dbc dbctx.Context, userID uuid.UUID) (*types.StudyStreak, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.StudyStreak
	err := transaction.WithContext(dbc.Ctx).Where("user_id = ?", userID).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *studyStreakRepo) CreateIfMissing(dbc dbctx.Context, row *types.StudyStreak) (*types.StudyStreak, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByUser(dbc, row.UserID)
}

func (r *studyStreakRepo) CompareAndSwap(dbc dbctx.Context, userID uuid.UUID, prevDate string, updates map[string]interface{}) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	updates["updated_at"] = time.Now().UTC()
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.StudyStreak{}).
		Where("user_id = ? AND last_active_date = ?", userID, prevDate).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
