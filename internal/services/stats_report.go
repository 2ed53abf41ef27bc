package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
)

const reportDays = 14

func (s *statsService) Report(ctx context.Context) ([]byte, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.GetByID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, notFound(err, "User")
	}
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	timeline, err := s.Timeline(ctx, reportDays)
	if err != nil {
		return nil, err
	}
	topics, err := s.Topics(ctx)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Study report", false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Study report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("%s  -  generated %s", tr(u.Name), s.now().In(s.loc).Format("2 Jan 2006 15:04")))
	pdf.Ln(12)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 10)
	}
	row := func(label, value string) {
		pdf.CellFormat(70, 7, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, value, "1", 1, "L", false, 0, "")
	}

	section("Overview")
	t := summary.Totals
	row("Active days", fmt.Sprint(t.ActiveDays))
	row("Doubts solved", fmt.Sprint(t.DoubtsSolved))
	row("Messages sent", fmt.Sprint(t.MessagesSent))
	row("Study time", (time.Duration(t.StudyMinutes) * time.Minute).String())
	row("Quizzes taken", fmt.Sprint(t.QuizzesTaken))
	row("Quiz accuracy", fmt.Sprintf("%.1f%%", summary.QuizAccuracy))
	row("Mock tests taken", fmt.Sprint(t.MockTestsTaken))
	if summary.Streak != nil {
		row("Current streak", fmt.Sprintf("%d days", summary.Streak.CurrentStreak))
		row("Longest streak", fmt.Sprintf("%d days", summary.Streak.LongestStreak))
	}
	pdf.Ln(6)

	section(fmt.Sprintf("Last %d days", reportDays))
	header := []string{"Date", "Doubts", "Messages", "Minutes", "Quizzes"}
	widths := []float64{40, 30, 30, 30, 30}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, d := range timeline {
		cells := []string{d.Date, fmt.Sprint(d.DoubtsSolved), fmt.Sprint(d.MessagesSent), fmt.Sprint(d.StudyMinutes), fmt.Sprint(d.QuizzesTaken)}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	if len(topics) > 0 {
		section("Topics")
		for _, ts := range topics {
			row(tr(ts.Topic), fmt.Sprintf("%d doubts, %d days", ts.Doubts, ts.Days))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
