package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

func samplePDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Arial", "", 12)
	for _, p := range pages {
		doc.AddPage()
		doc.Cell(0, 10, p)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("render sample: %v", err)
	}
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	data := samplePDF(t, "Unit 1 Kinematics", "Unit 2 Thermodynamics")
	res, err := Extract(data)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Pages != 2 {
		t.Fatalf("Extract: expected 2 pages, got %d", res.Pages)
	}
	if !strings.Contains(strings.ReplaceAll(res.Text, " ", ""), "Kinematics") {
		t.Fatalf("Extract: expected page text, got %q", res.Text)
	}
}

func TestExtractRejectsNonPDF(t *testing.T) {
	if _, err := Extract([]byte("hello world")); !errors.Is(err, ErrNotPDF) {
		t.Fatalf("Extract: expected ErrNotPDF, got %v", err)
	}
	if _, err := Extract([]byte("%PDF-1.4 truncated")); err == nil {
		t.Fatalf("Extract: expected error for truncated document")
	}
}

func TestTopics(t *testing.T) {
	text := strings.Join([]string{
		"Physics syllabus",
		"Unit 1: Units and Measurements",
		"the study of motion in one dimension",
		"UNIT 1: UNITS AND MEASUREMENTS",
		"Chapter IV - Laws of Motion",
		"2.1 Work, Energy and Power",
		"ELECTROSTATICS",
		"3 a",
		"12.5 percent of marks",
	}, "\n")
	got := Topics(text)
	want := []string{
		"Unit 1: Units and Measurements",
		"Chapter IV - Laws of Motion",
		"2.1 Work, Energy and Power",
		"ELECTROSTATICS",
		"12.5 percent of marks",
	}
	if len(got) != len(want) {
		t.Fatalf("Topics: expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Topics[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestTopicsCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "Unit %d topic\n", i+1)
	}
	if got := Topics(b.String()); len(got) != MaxTopics {
		t.Fatalf("Topics: expected cap %d, got %d", MaxTopics, len(got))
	}
}
