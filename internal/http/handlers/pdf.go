package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bytesolver-backend/internal/http/response"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
	"github.com/yungbote/bytesolver-backend/internal/services"
)

type PDFHandler struct {
	log *logger.Logger
	pdf services.PDFService
}

func NewPDFHandler(log *logger.Logger, pdf services.PDFService) *PDFHandler {
	return &PDFHandler{log: log.With("handler", "PDFHandler"), pdf: pdf}
}

// POST /pdf/upload (multipart field "pdf", or "file")
func (h *PDFHandler) Upload(c *gin.Context) {
	fh, err := uploadedFile(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondErr(c, apierr.BadRequest("FILE_TOO_LARGE", "File exceeds the 25 MB limit"))
			return
		}
		response.RespondErr(c, apierr.Validation("A PDF file is required in the \"pdf\" field"))
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if err := services.CheckPDFUpload(fh.Filename, contentType, fh.Size); err != nil {
		response.RespondErr(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondErr(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	doc, err := h.pdf.Upload(c.Request.Context(), fh.Filename, contentType, f)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"pdf": doc})
}

func uploadedFile(c *gin.Context) (*multipart.FileHeader, error) {
	fh, err := c.FormFile("pdf")
	if err == nil {
		return fh, nil
	}
	if errors.Is(err, http.ErrMissingFile) {
		return c.FormFile("file")
	}
	return nil, err
}

// GET /pdf
func (h *PDFHandler) List(c *gin.Context) {
	docs, err := h.pdf.List(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"pdfs": docs})
}

// GET /pdf/:id
func (h *PDFHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "PDF")
	if !ok {
		return
	}
	doc, err := h.pdf.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"pdf": doc})
}

// GET /pdf/:id/file
func (h *PDFHandler) Download(c *gin.Context) {
	id, ok := pathID(c, "id", "PDF")
	if !ok {
		return
	}
	rc, doc, err := h.pdf.Open(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.OriginalName))
	if doc.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(doc.Size, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.log.Warn("PDF download interrupted", "pdf_id", id, "error", err)
	}
}

// DELETE /pdf/:id
func (h *PDFHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "PDF")
	if !ok {
		return
	}
	if err := h.pdf.Delete(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "PDF deleted"})
}
