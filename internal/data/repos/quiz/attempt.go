package quiz

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

// QuizAttemptRepo has no update path; attempts are immutable.
type QuizAttemptRepo interface {
	Create(dbc dbctx.Context, a *types.QuizAttempt) (*types.QuizAttempt, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.QuizAttempt, error)
	ListByQuiz(dbc dbctx.Context, userID, quizID uuid.UUID) ([]*types.QuizAttempt, error)
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	repoLog := baseLog.With("repo", "QuizAttemptRepo")
	return &quizAttemptRepo{db: db, log: repoLog}
}

func (r *quizAttemptRepo) Create(dbc dbctx.Context, a *types.QuizAttempt) (*types.QuizAttempt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *quizAttemptRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.QuizAttempt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var results []*types.QuizAttempt
	if userID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizAttemptRepo) ListByQuiz(dbc dbctx.Context, userID, quizID uuid.UUID) ([]*types.QuizAttempt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.QuizAttempt
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
