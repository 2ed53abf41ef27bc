package domain

import (
	"github.com/yungbote/bytesolver-backend/internal/domain/chat"
	"github.com/yungbote/bytesolver-backend/internal/domain/doubt"
	"github.com/yungbote/bytesolver-backend/internal/domain/ide"
	"github.com/yungbote/bytesolver-backend/internal/domain/mocktest"
	"github.com/yungbote/bytesolver-backend/internal/domain/pdf"
	"github.com/yungbote/bytesolver-backend/internal/domain/progress"
	"github.com/yungbote/bytesolver-backend/internal/domain/quiz"
	"github.com/yungbote/bytesolver-backend/internal/domain/user"
	"github.com/yungbote/bytesolver-backend/internal/domain/video"
)

type User = user.User

type ChatSession = chat.ChatSession
type ChatMessage = chat.ChatMessage

type UploadedPDF = pdf.UploadedPDF

type Quiz = quiz.Quiz
type QuizQuestion = quiz.Question
type QuizAttempt = quiz.QuizAttempt
type QuizAttemptAnswer = quiz.AttemptAnswer

type MockTest = mocktest.MockTest
type MockQuestion = mocktest.Question
type MockPublicQuestion = mocktest.PublicQuestion
type MockSubjectResult = mocktest.SubjectResult

type LearningStatistics = progress.LearningStatistics
type StudyStreak = progress.StudyStreak

type Doubt = doubt.Doubt

type IdeProject = ide.IdeProject
type IdeFile = ide.IdeFile

type VideoLearning = video.VideoLearning
type VideoItem = video.Item
type VideoLists = video.Lists

const (
	ChatModeSyllabus = chat.ModeSyllabus
	ChatModeOpen     = chat.ModeOpen
	ChatRoleUser     = chat.RoleUser
	ChatRoleAsst     = chat.RoleAssistant

	MockStatusInProgress = mocktest.StatusInProgress
	MockStatusCompleted  = mocktest.StatusCompleted

	QuizTypeMCQ   = quiz.TypeMCQ
	QuizTypeShort = quiz.TypeShort

	DateLayout = progress.DateLayout
)

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&User{},
		&ChatSession{},
		&ChatMessage{},
		&UploadedPDF{},
		&Quiz{},
		&QuizAttempt{},
		&MockTest{},
		&LearningStatistics{},
		&StudyStreak{},
		&Doubt{},
		&IdeProject{},
		&IdeFile{},
		&VideoLearning{},
	}
}
