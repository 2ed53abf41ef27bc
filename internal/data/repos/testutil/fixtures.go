package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	hash := "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z2Yx1Y5n0b1x3bF8O0x1Hq9W"
	now := time.Now().UTC()
	u := &types.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: &hash,
		Name:         "A",
		Role:         "student",
		Preferences:  datatypes.JSON([]byte("{}")),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, mode string) *types.ChatSession {
	tb.Helper()
	now := time.Now().UTC()
	s := &types.ChatSession{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         "New Chat",
		Mode:          mode,
		LastMessageAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

// SeedMessage stamps messages at createdAt so callers control ordering.
func SeedMessage(tb testing.TB, ctx context.Context, tx *gorm.DB, s *types.ChatSession, role, content string, createdAt time.Time) *types.ChatMessage {
	tb.Helper()
	m := &types.ChatMessage{
		ID:        uuid.New(),
		SessionID: s.ID,
		UserID:    s.UserID,
		Role:      role,
		Content:   content,
		CreatedAt: createdAt,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed message: %v", err)
	}
	return m
}

func SeedPDF(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, text string) *types.UploadedPDF {
	tb.Helper()
	now := time.Now().UTC()
	id := uuid.New()
	p := &types.UploadedPDF{
		ID:               id,
		UserID:           userID,
		Filename:         id.String() + ".pdf",
		OriginalName:     "syllabus.pdf",
		StorageKey:       id.String() + ".pdf",
		Size:             1024,
		PageCount:        1,
		ExtractedText:    text,
		Topics:           datatypes.JSON([]byte(`[]`)),
		ExtractionMethod: "text",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed pdf: %v", err)
	}
	return p
}

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, language string) *types.IdeProject {
	tb.Helper()
	now := time.Now().UTC()
	p := &types.IdeProject{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         "project",
		Language:     language,
		ChatSessions: datatypes.JSON([]byte(`{}`)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

func SeedQuiz(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, questionsJSON string) *types.Quiz {
	tb.Helper()
	q := &types.Quiz{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      "quiz",
		Difficulty: "medium",
		Questions:  datatypes.JSON([]byte(questionsJSON)),
		CreatedAt:  time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}
