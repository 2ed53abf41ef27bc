package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/bytesolver-backend/internal/data/db"
	"github.com/yungbote/bytesolver-backend/internal/data/repos"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	domainpdf "github.com/yungbote/bytesolver-backend/internal/domain/pdf"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
	"github.com/yungbote/bytesolver-backend/internal/platform/gcp"
	"github.com/yungbote/bytesolver-backend/internal/platform/objectstore"
	"github.com/yungbote/bytesolver-backend/internal/platform/pdftext"
)

const (
	ExtractionText = "text"
	ExtractionOCR  = "ocr"
	ExtractionNone = "none"

	pdfMime = "application/pdf"
)

func errFileTooLarge() error {
	return apierr.BadRequest("FILE_TOO_LARGE", "File exceeds the 25 MB limit")
}

func errInvalidFileType() error {
	return apierr.BadRequest("INVALID_FILE_TYPE", "Only PDF files are allowed")
}

type PDFService interface {
	// Upload validates, extracts and stores one PDF read from r.
	Upload(ctx context.Context, originalName, contentType string, r io.Reader) (*types.UploadedPDF, error)
	List(ctx context.Context) ([]*types.UploadedPDF, error)
	Get(ctx context.Context, pdfID uuid.UUID) (*types.UploadedPDF, error)
	// Open streams the stored file. The caller closes the reader.
	Open(ctx context.Context, pdfID uuid.UUID) (io.ReadCloser, *types.UploadedPDF, error)
	Delete(ctx context.Context, pdfID uuid.UUID) error
}

type pdfService struct {
	log         *logger.Logger
	tx          db.TxRunner
	pdfRepo     repos.UploadedPDFRepo
	sessionRepo repos.ChatSessionRepo
	store       objectstore.Store
	ocr         gcp.OCR
	now         Clock
}

// NewPDFService wires the upload pipeline. ocr may be nil.
func NewPDFService(
	log *logger.Logger,
	tx db.TxRunner,
	pdfRepo repos.UploadedPDFRepo,
	sessionRepo repos.ChatSessionRepo,
	store objectstore.Store,
	ocr gcp.OCR,
) PDFService {
	return &pdfService{
		log:         log.With("service", "PDFService"),
		tx:          tx,
		pdfRepo:     pdfRepo,
		sessionRepo: sessionRepo,
		store:       store,
		ocr:         ocr,
		now:         systemClock,
	}
}

// CheckPDFUpload applies the cheap checks that need no file contents.
func CheckPDFUpload(originalName, contentType string, size int64) error {
	if size > domainpdf.MaxUploadBytes {
		return errFileTooLarge()
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	mt := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if ext != ".pdf" && mt != pdfMime {
		return errInvalidFileType()
	}
	return nil
}

func (ps *pdfService) Upload(ctx context.Context, originalName, contentType string, r io.Reader) (*types.UploadedPDF, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	originalName = filepath.Base(strings.TrimSpace(originalName))
	if err := CheckPDFUpload(originalName, contentType, 0); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(r, domainpdf.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > domainpdf.MaxUploadBytes {
		return nil, errFileTooLarge()
	}
	if !pdftext.IsPDF(data) {
		return nil, errInvalidFileType()
	}

	extracted, err := pdftext.Extract(data)
	if err != nil {
		// Unparseable but signed as PDF: keep the file, note the failure.
		ps.log.Warn("PDF text extraction failed", "user_id", userID, "error", err)
	}
	method := ExtractionText
	if strings.TrimSpace(extracted.Text) == "" {
		method = ExtractionNone
		if ps.ocr != nil {
			text, pages, ocrErr := ps.ocr.ExtractText(ctx, data, pdfMime)
			switch {
			case ocrErr != nil:
				ps.log.Warn("OCR fallback failed", "user_id", userID, "error", ocrErr)
			case strings.TrimSpace(text) != "":
				extracted.Text = text
				method = ExtractionOCR
				if extracted.Pages == 0 {
					extracted.Pages = pages
				}
			}
		}
	}

	topics, err := json.Marshal(pdftext.Topics(extracted.Text))
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := id.String() + ".pdf"
	if err := ps.store.Put(ctx, key, bytes.NewReader(data), pdfMime); err != nil {
		return nil, fmt.Errorf("store pdf: %w", err)
	}

	now := ps.now().UTC()
	row, err := ps.pdfRepo.Create(dbctx.New(ctx), &types.UploadedPDF{
		ID:               id,
		UserID:           userID,
		Filename:         key,
		OriginalName:     truncateRunes(originalName, 255),
		StorageKey:       key,
		Size:             int64(len(data)),
		PageCount:        extracted.Pages,
		ExtractedText:    extracted.Text,
		Topics:           datatypes.JSON(topics),
		ExtractionMethod: method,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		if delErr := ps.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			ps.log.Warn("Failed to remove orphaned pdf", "key", key, "error", delErr)
		}
		return nil, err
	}
	ps.log.Info("PDF uploaded", "user_id", userID, "pdf_id", row.ID, "pages", row.PageCount, "method", method)
	return row, nil
}

func (ps *pdfService) List(ctx context.Context) ([]*types.UploadedPDF, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	out, err := ps.pdfRepo.ListByUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*types.UploadedPDF{}
	}
	return out, nil
}

func (ps *pdfService) Get(ctx context.Context, pdfID uuid.UUID) (*types.UploadedPDF, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	row, err := ps.pdfRepo.GetForUser(dbctx.New(ctx), userID, pdfID)
	if err != nil {
		return nil, notFound(err, "PDF")
	}
	return row, nil
}

func (ps *pdfService) Open(ctx context.Context, pdfID uuid.UUID) (io.ReadCloser, *types.UploadedPDF, error) {
	row, err := ps.Get(ctx, pdfID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := ps.store.Open(ctx, row.StorageKey)
	if errors.Is(err, objectstore.ErrObjectNotFound) {
		return nil, nil, apierr.NotFound("PDF file")
	}
	if err != nil {
		return nil, nil, err
	}
	return rc, row, nil
}

func (ps *pdfService) Delete(ctx context.Context, pdfID uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	var key string
	err = ps.tx.InTx(ctx, func(dbc dbctx.Context) error {
		row, err := ps.pdfRepo.GetForUser(dbc, userID, pdfID)
		if err != nil {
			return err
		}
		key = row.StorageKey
		if err := ps.sessionRepo.ClearPDF(dbc, userID, pdfID); err != nil {
			return err
		}
		return ps.pdfRepo.Delete(dbc, userID, pdfID)
	})
	if err != nil {
		return notFound(err, "PDF")
	}
	if err := ps.store.Delete(ctx, key); err != nil {
		ps.log.Warn("Failed to delete stored pdf", "pdf_id", pdfID, "key", key, "error", err)
	}
	return nil
}
