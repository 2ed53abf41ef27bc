package quiz

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

type QuizRepo interface {
	Create(dbc dbctx.Context, q *types.Quiz) (*types.Quiz, error)
	GetForUser(dbc dbctx.Context, userID, quizID uuid.UUID) (*types.Quiz, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Quiz, error)
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) Create(dbc dbctx.Context, q *types.Quiz) (*types.Quiz, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

func (r *quizRepo) GetForUser(dbc dbctx.Context, userID, quizID uuid.UUID) (*types.Quiz, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Quiz
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", quizID, userID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *quizRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Quiz, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var out []*types.Quiz
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
