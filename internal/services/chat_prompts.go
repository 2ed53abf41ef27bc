package services

import (
	"fmt"
	"strings"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/platform/promptstyle"
)

// SyllabusContextChars caps how much PDF text goes into a syllabus prompt.
const SyllabusContextChars = 12000

const (
	// NoSyllabusReply is sent instead of calling the model when a syllabus
	// session has nothing to ground on.
	NoSyllabusReply = "I don't have any syllabus content for this chat yet. Please upload a syllabus PDF and link it to this session, or switch to open mode to ask general questions."
	// TutorUnavailableReply replaces the answer when every model provider failed.
	TutorUnavailableReply = "Sorry, I couldn't reach the AI tutor right now. Your question has been saved, please try again in a moment."
)

func openTutorPrompt(category string) string {
	var b strings.Builder
	b.WriteString("Help the student understand and solve their academic doubt.")
	if c := strings.TrimSpace(category); c != "" {
		fmt.Fprintf(&b, "\nThe student is studying %s; prefer examples from that subject.", c)
	}
	b.WriteString("\nStart with the direct answer, then the reasoning. End with one short check-your-understanding question when it helps.")
	return promptstyle.ApplySystem(b.String(), promptstyle.ModeText)
}

func syllabusTutorPrompt(pdf *types.UploadedPDF, category string) string {
	var b strings.Builder
	b.WriteString("Answer strictly from the syllabus excerpt below.")
	b.WriteString("\nIf the syllabus does not cover the question, say that it is outside the uploaded syllabus and suggest switching to open mode.")
	if c := strings.TrimSpace(category); c != "" {
		fmt.Fprintf(&b, "\nSubject focus: %s.", c)
	}
	fmt.Fprintf(&b, "\n\nSYLLABUS (%s):\n", pdf.OriginalName)
	b.WriteString(truncateRunes(pdf.ExtractedText, SyllabusContextChars))
	return promptstyle.ApplySystem(b.String(), promptstyle.ModeText)
}

// deriveTitle builds a session title from the first question.
func deriveTitle(content string) string {
	title := spaceRe.ReplaceAllString(strings.TrimSpace(content), " ")
	if len([]rune(title)) <= maxTitleChars {
		return title
	}
	cut := []rune(title)[:maxTitleChars-3]
	if i := strings.LastIndex(string(cut), " "); i > maxTitleChars/2 {
		return string(cut)[:i] + "..."
	}
	return string(cut) + "..."
}
