package pdf

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

// listColumns leaves out extracted_text, which can be large.
var listColumns = []string{
	"id", "user_id", "filename", "original_name", "storage_key", "size",
	"page_count", "topics", "extraction_method", "created_at", "updated_at",
}

type UploadedPDFRepo interface {
	Create(dbc dbctx.Context, row *types.UploadedPDF) (*types.UploadedPDF, error)
	GetForUser(dbc dbctx.Context, userID, pdfID uuid.UUID) (*types.UploadedPDF, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UploadedPDF, error)
	Delete(dbc dbctx.Context, userID, pdfID uuid.UUID) error
}

type uploadedPDFRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUploadedPDFRepo(db *gorm.DB, baseLog *logger.Logger) UploadedPDFRepo {
	return &uploadedPDFRepo{db: db, log: baseLog.With("repo", "UploadedPDFRepo")}
}

func (r *uploadedPDFRepo) Create(dbc dbctx.Context, row *types.UploadedPDF) (*types.UploadedPDF, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *uploadedPDFRepo) GetForUser(dbc dbctx.Context, userID, pdfID uuid.UUID) (*types.UploadedPDF, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.UploadedPDF
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", pdfID, userID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *uploadedPDFRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UploadedPDF, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.UploadedPDF
	if err := transaction.WithContext(dbc.Ctx).
		Select(listColumns).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *uploadedPDFRepo) Delete(dbc dbctx.Context, userID, pdfID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", pdfID, userID).
		Delete(&types.UploadedPDF{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}
