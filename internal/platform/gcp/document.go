package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/fieldmaskpb"

	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

type DocumentConfig struct {
	ProjectID   string
	Location    string
	ProcessorID string
	Credentials string
}

func (c DocumentConfig) Enabled() bool {
	return strings.TrimSpace(c.ProjectID) != "" && strings.TrimSpace(c.ProcessorID) != ""
}

// OCR extracts text from scanned documents.
type OCR interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (text string, pages int, err error)
	Close() error
}

type documentService struct {
	log       *logger.Logger
	docClient *documentai.DocumentProcessorClient
	processor string
}

func NewDocumentOCR(ctx context.Context, log *logger.Logger, cfg DocumentConfig) (OCR, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if !cfg.Enabled() {
		return nil, fmt.Errorf("document ai processor not configured")
	}
	slog := log.With("service", "gcp.Document")

	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "us"
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)

	opts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, ClientOptions(cfg.Credentials)...)
	c, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}
	slog.Info("Document AI initialized", "endpoint", endpoint)

	return &documentService{
		log:       slog,
		docClient: c,
		processor: processorName(cfg.ProjectID, location, cfg.ProcessorID),
	}, nil
}

func (s *documentService) Close() error {
	if s == nil || s.docClient == nil {
		return nil
	}
	return s.docClient.Close()
}

func (s *documentService) ExtractText(ctx context.Context, data []byte, mimeType string) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	if len(data) == 0 {
		return "", 0, nil
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	req := &documentaipb.ProcessRequest{
		Name: s.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
		// Only the text and page count are used.
		FieldMask: &fieldmaskpb.FieldMask{Paths: []string{"text", "pages.page_number"}},
	}

	resp, err := s.docClient.ProcessDocument(ctx, req)
	if err != nil {
		return "", 0, fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	if resp == nil || resp.Document == nil {
		return "", 0, nil
	}
	return strings.TrimSpace(resp.Document.GetText()), len(resp.Document.GetPages()), nil
}

func processorName(project, location, processorID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		strings.TrimSpace(project), strings.TrimSpace(location), strings.TrimSpace(processorID))
}
