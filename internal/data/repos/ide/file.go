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

// IdeFileRepo maps duplicate (project, path) pairs to ErrConflict.
type IdeFileRepo interface {
	Create(dbc dbctx.Context, f *types.IdeFile) (*types.IdeFile, error)
	GetInProject(dbc dbctx.Context, projectID, fileID uuid.UUID) (*types.IdeFile, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.IdeFile, error)
	UpdateFields(dbc dbctx.Context, projectID, fileID uuid.UUID, updates map[string]any) error
	Delete(dbc dbctx.Context, projectID, fileID uuid.UUID) error
}

type ideFileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIdeFileRepo(db *gorm.DB, baseLog *logger.Logger) IdeFileRepo {
	return &ideFileRepo{db: db, log: baseLog.With("repo", "IdeFileRepo")}
}

func (r *ideFileRepo) Create(dbc dbctx.Context, f *types.IdeFile) (*types.IdeFile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(f).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.ErrConflict
		}
		return nil, err
	}
	return f, nil
}

func (r *ideFileRepo) GetInProject(dbc dbctx.Context, projectID, fileID uuid.UUID) (*types.IdeFile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.IdeFile
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND project_id = ?", fileID, projectID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ideFileRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.IdeFile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.IdeFile
	if err := transaction.WithContext(dbc.Ctx).
		Where("project_id = ?", projectID).
		Order("path ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ideFileRepo) UpdateFields(dbc dbctx.Context, projectID, fileID uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	updates["updated_at"] = time.Now().UTC()
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.IdeFile{}).
		Where("id = ? AND project_id = ?", fileID, projectID).
		Updates(updates)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return pkgerrors.ErrConflict
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

func (r *ideFileRepo) Delete(dbc dbctx.Context, projectID, fileID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND project_id = ?", fileID, projectID).
		Delete(&types.IdeFile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}
