// Package pdftext pulls plain text and heading-like topics out of PDF bytes.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// Magic is the signature every PDF file starts with.
	Magic = []byte("%PDF-")

	ErrNotPDF = errors.New("not a pdf document")
)

type Result struct {
	Text  string
	Pages int
}

// IsPDF checks the leading signature.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, Magic)
}

// Extract reads embedded text page by page. Pages that fail to decode are
// skipped; scanned documents come back with empty Text and a page count.
func Extract(data []byte) (res Result, err error) {
	if !IsPDF(data) {
		return Result{}, ErrNotPDF
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}
	res.Pages = r.NumPage()

	var b strings.Builder
	for n := 1; n <= res.Pages; n++ {
		text := pageText(r, n)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimSpace(text))
	}
	res.Text = b.String()
	return res, nil
}

func pageText(r *pdf.Reader, n int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	page := r.Page(n)
	if page.V.IsNull() {
		return ""
	}
	t, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return t
}
