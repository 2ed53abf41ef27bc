package ide

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

type IdeProjectRepo interface {
	Create(dbc dbctx.Context, p *types.IdeProject) (*types.IdeProject, error)
	GetForUser(dbc dbctx.Context, userID, projectID uuid.UUID) (*types.IdeProject, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.IdeProject, error)
	UpdateFields(dbc dbctx.Context, userID, projectID uuid.UUID, updates map[string]any) error
	// Delete removes the project and all of its files.
	Delete(dbc dbctx.Context, userID, projectID uuid.UUID) error
}

type ideProjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIdeProjectRepo(db *gorm.DB, baseLog *logger.Logger) IdeProjectRepo {
	return &ideProjectRepo{db: db, log: baseLog.With("repo", "IdeProjectRepo")}
}

func (r *ideProjectRepo) Create(dbc dbctx.Context, p *types.IdeProject) (*types.IdeProject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if len(p.ChatSessions) == 0 {
		p.ChatSessions = []byte(`{}`)
	}
	if err := transaction.WithContext(dbc.Ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ideProjectRepo) GetForUser(dbc dbctx.Context, userID, projectID uuid.UUID) (*types.IdeProject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.IdeProject
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", projectID, userID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ideProjectRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.IdeProject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.IdeProject
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ideProjectRepo) UpdateFields(dbc dbctx.Context, userID, projectID uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	updates["updated_at"] = time.Now().UTC()
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.IdeProject{}).
		Where("id = ? AND user_id = ?", projectID, userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

func (r *ideProjectRepo) Delete(dbc dbctx.Context, userID, projectID uuid.UUID) error {
	run := func(txx *gorm.DB) error {
		res := txx.WithContext(dbc.Ctx).
			Where("id = ? AND user_id = ?", projectID, userID).
			Delete(&types.IdeProject{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkgerrors.ErrNotFound
		}
		return txx.WithContext(dbc.Ctx).
			Where("project_id = ?", projectID).
			Delete(&types.IdeFile{}).Error
	}
	if dbc.Tx != nil {
		return run(dbc.Tx)
	}
	return r.db.WithContext(dbc.Ctx).Transaction(run)
}
