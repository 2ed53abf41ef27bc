package mocktest

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

type MockTestRepo interface {
	Create(dbc dbctx.Context, t *types.MockTest) (*types.MockTest, error)
	GetForUser(dbc dbctx.Context, userID, testID uuid.UUID) (*types.MockTest, error)
	// ListByUser omits question snapshots.
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.MockTest, error)
	// Complete applies the result only while the test is still in progress and
	// reports whether this call performed the transition.
	Complete(dbc dbctx.Context, userID, testID uuid.UUID, result map[string]any) (bool, error)
}

type mockTestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMockTestRepo(db *gorm.DB, baseLog *logger.Logger) MockTestRepo {
	return &mockTestRepo{db: db, log: baseLog.With("repo", "MockTestRepo")}
}

func (r *mockTestRepo) Create(dbc dbctx.Context, t *types.MockTest) (*types.MockTest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (r *mockTestRepo) GetForUser(dbc dbctx.Context, userID, testID uuid.UUID) (*types.MockTest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.MockTest
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", testID, userID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *mockTestRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.MockTest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var out []*types.MockTest
	if err := transaction.WithContext(dbc.Ctx).
		Omit("questions", "answers").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mockTestRepo) Complete(dbc dbctx.Context, userID, testID uuid.UUID, result map[string]any) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	result["status"] = types.MockStatusCompleted
	result["completed_at"] = now
	result["updated_at"] = now
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.MockTest{}).
		Where("id = ? AND user_id = ? AND status = ?", testID, userID, types.MockStatusInProgress).
		Updates(result)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
