package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

type ChatSessionRepo interface {
	Create(dbc dbctx.Context, session *types.ChatSession) (*types.ChatSession, error)
	// GetForUser returns ErrNotFound when the session is missing or owned by someone else.
	GetForUser(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.ChatSession, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ChatSession, error)
	UpdateFields(dbc dbctx.Context, userID, sessionID uuid.UUID, updates map[string]any) error
	// Delete removes the session and its messages.
	Delete(dbc dbctx.Context, userID, sessionID uuid.UUID) error
	DeleteByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) error
	ClearPDF(dbc dbctx.Context, userID, pdfID uuid.UUID) error
}

type chatSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatSessionRepo(db *gorm.DB, log *logger.Logger) ChatSessionRepo {
	return &chatSessionRepo{db: db, log: log.With("repo", "ChatSessionRepo")}
}

func (r *chatSessionRepo) Create(dbc dbctx.Context, session *types.ChatSession) (*types.ChatSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.LastMessageAt.IsZero() {
		session.LastMessageAt = now
	}
	if err := transaction.WithContext(dbc.Ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *chatSessionRepo) GetForUser(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.ChatSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || sessionID == uuid.Nil {
		return nil, pkgerrors.ErrNotFound
	}
	var out types.ChatSession
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *chatSessionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ChatSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*types.ChatSession
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("last_message_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chatSessionRepo) UpdateFields(dbc dbctx.Context, userID, sessionID uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.ChatSession{}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

func (r *chatSessionRepo) Delete(dbc dbctx.Context, userID, sessionID uuid.UUID) error {
	return r.DeleteByIDs(dbc, userID, []uuid.UUID{sessionID})
}

func (r *chatSessionRepo) DeleteByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	run := func(txx *gorm.DB) error {
		var owned []uuid.UUID
		if err := txx.WithContext(dbc.Ctx).
			Model(&types.ChatSession{}).
			Where("user_id = ? AND id IN ?", userID, ids).
			Pluck("id", &owned).Error; err != nil {
			return err
		}
		if len(owned) == 0 {
			return pkgerrors.ErrNotFound
		}
		if err := txx.WithContext(dbc.Ctx).
			Where("session_id IN ?", owned).
			Delete(&types.ChatMessage{}).Error; err != nil {
			return err
		}
		return txx.WithContext(dbc.Ctx).
			Where("id IN ?", owned).
			Delete(&types.ChatSession{}).Error
	}
	if dbc.Tx != nil {
		return run(dbc.Tx)
	}
	return r.db.WithContext(dbc.Ctx).Transaction(run)
}

func (r *chatSessionRepo) ClearPDF(dbc dbctx.Context, userID, pdfID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.ChatSession{}).
		Where("user_id = ? AND pdf_id = ?", userID, pdfID).
		Updates(map[string]any{"pdf_id": nil, "updated_at": time.Now().UTC()}).Error
}
