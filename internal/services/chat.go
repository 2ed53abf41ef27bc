package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/bytesolver-backend/internal/clients/llm"
	"github.com/yungbote/bytesolver-backend/internal/data/db"
	"github.com/yungbote/bytesolver-backend/internal/data/repos"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/domain/chat"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
)

const (
	DefaultSessionTitle = "New Chat"
	maxTitleChars       = 60
	maxMessageChars     = 10000
	maxCategoryChars    = 60
)

type CreateSessionInput struct {
	Title    string     `json:"title"`
	Mode     string     `json:"mode"`
	Category string     `json:"category"`
	PDFID    *uuid.UUID `json:"pdfId"`
}

// UpdateSessionInput fields are optional. An empty PDFID unlinks the PDF.
type UpdateSessionInput struct {
	Title    *string `json:"title"`
	Mode     *string `json:"mode"`
	Category *string `json:"category"`
	PDFID    *string `json:"pdfId"`
}

type SessionDetail struct {
	Session  *types.ChatSession   `json:"session"`
	Messages []*types.ChatMessage `json:"messages"`
}

type SendResult struct {
	Session          *types.ChatSession `json:"session"`
	UserMessage      *types.ChatMessage `json:"userMessage"`
	AssistantMessage *types.ChatMessage `json:"assistantMessage"`
	// Degraded is set when the reply is a canned fallback.
	Degraded bool `json:"degraded"`
}

type ChatService interface {
	ListSessions(ctx context.Context) ([]*types.ChatSession, error)
	CreateSession(ctx context.Context, in CreateSessionInput) (*types.ChatSession, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionDetail, error)
	UpdateSession(ctx context.Context, sessionID uuid.UUID, in UpdateSessionInput) (*types.ChatSession, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
	// SendMessage runs one exchange. A non-nil onDelta streams the reply.
	SendMessage(ctx context.Context, sessionID uuid.UUID, content string, onDelta func(string)) (*SendResult, error)
}

type chatService struct {
	log         *logger.Logger
	tx          db.TxRunner
	sessionRepo repos.ChatSessionRepo
	messageRepo repos.ChatMessageRepo
	pdfRepo     repos.UploadedPDFRepo
	model       llm.Client
	activity    ActivityRecorder
	now         Clock
}

func NewChatService(
	log *logger.Logger,
	tx db.TxRunner,
	sessionRepo repos.ChatSessionRepo,
	messageRepo repos.ChatMessageRepo,
	pdfRepo repos.UploadedPDFRepo,
	model llm.Client,
	activity ActivityRecorder,
) ChatService {
	return &chatService{
		log:         log.With("service", "ChatService"),
		tx:          tx,
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		pdfRepo:     pdfRepo,
		model:       model,
		activity:    activity,
		now:         systemClock,
	}
}

func (cs *chatService) ListSessions(ctx context.Context) ([]*types.ChatSession, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	out, err := cs.sessionRepo.ListByUser(dbctx.New(ctx), userID, 200)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*types.ChatSession{}
	}
	return out, nil
}

func (cs *chatService) CreateSession(ctx context.Context, in CreateSessionInput) (*types.ChatSession, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	mode := strings.ToLower(strings.TrimSpace(in.Mode))
	if mode == "" {
		mode = chat.ModeOpen
	}
	if !chat.ValidMode(mode) {
		return nil, apierr.Validation("mode must be syllabus or open")
	}
	category := strings.TrimSpace(in.Category)
	if len([]rune(category)) > maxCategoryChars {
		return nil, apierr.Validation("category is too long")
	}
	dbc := dbctx.New(ctx)
	if in.PDFID != nil {
		if _, err := cs.pdfRepo.GetForUser(dbc, userID, *in.PDFID); err != nil {
			return nil, notFound(err, "PDF")
		}
	}

	title := truncateRunes(strings.TrimSpace(in.Title), maxTitleChars)
	titled := title != ""
	if !titled {
		title = DefaultSessionTitle
	}
	now := cs.now().UTC()
	return cs.sessionRepo.Create(dbc, &types.ChatSession{
		ID:             uuid.New(),
		UserID:         userID,
		Title:          title,
		Mode:           mode,
		Category:       category,
		PDFID:          in.PDFID,
		TitleGenerated: titled,
		LastMessageAt:  now,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (cs *chatService) GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionDetail, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	session, err := cs.sessionRepo.GetForUser(dbc, userID, sessionID)
	if err != nil {
		return nil, notFound(err, "Session")
	}
	msgs, err := cs.messageRepo.ListBySession(dbc, session.ID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*types.ChatMessage{}
	}
	return &SessionDetail{Session: session, Messages: msgs}, nil
}

func (cs *chatService) UpdateSession(ctx context.Context, sessionID uuid.UUID, in UpdateSessionInput) (*types.ChatSession, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	updates := map[string]any{}
	if in.Title != nil {
		title := truncateRunes(strings.TrimSpace(*in.Title), maxTitleChars)
		if title == "" {
			return nil, apierr.Validation("title cannot be empty")
		}
		updates["title"] = title
		updates["title_generated"] = true
	}
	if in.Mode != nil {
		mode := strings.ToLower(strings.TrimSpace(*in.Mode))
		if !chat.ValidMode(mode) {
			return nil, apierr.Validation("mode must be syllabus or open")
		}
		updates["mode"] = mode
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if len([]rune(category)) > maxCategoryChars {
			return nil, apierr.Validation("category is too long")
		}
		updates["category"] = category
	}
	if in.PDFID != nil {
		raw := strings.TrimSpace(*in.PDFID)
		if raw == "" {
			updates["pdf_id"] = nil
		} else {
			pdfID, err := uuid.Parse(raw)
			if err != nil {
				return nil, apierr.Validation("pdfId is not a valid id")
			}
			if _, err := cs.pdfRepo.GetForUser(dbc, userID, pdfID); err != nil {
				return nil, notFound(err, "PDF")
			}
			updates["pdf_id"] = pdfID
		}
	}
	if err := cs.sessionRepo.UpdateFields(dbc, userID, sessionID, updates); err != nil {
		return nil, notFound(err, "Session")
	}
	session, err := cs.sessionRepo.GetForUser(dbc, userID, sessionID)
	if err != nil {
		return nil, notFound(err, "Session")
	}
	return session, nil
}

func (cs *chatService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	return notFound(cs.sessionRepo.Delete(dbctx.New(ctx), userID, sessionID), "Session")
}

func (cs *chatService) SendMessage(ctx context.Context, sessionID uuid.UUID, content string, onDelta func(string)) (*SendResult, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apierr.Validation("content is required")
	}
	if len([]rune(content)) > maxMessageChars {
		return nil, apierr.Validation("message is too long")
	}

	dbc := dbctx.New(ctx)
	session, err := cs.sessionRepo.GetForUser(dbc, userID, sessionID)
	if err != nil {
		return nil, notFound(err, "Session")
	}
	history, err := cs.messageRepo.ListBySession(dbc, session.ID)
	if err != nil {
		return nil, err
	}

	userMsg, err := cs.messageRepo.Create(dbc, &types.ChatMessage{
		ID:        uuid.New(),
		SessionID: session.ID,
		UserID:    userID,
		Role:      chat.RoleUser,
		Content:   content,
		CreatedAt: cs.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	system, canned, err := cs.systemPrompt(dbc, session)
	if err != nil {
		return nil, err
	}

	var reply string
	answered := false
	switch {
	case canned != "":
		reply = canned
		emit(onDelta, reply)
	default:
		msgs := make([]llm.Message, 0, len(history)+1)
		for _, m := range history {
			msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
		}
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: content})

		var callErr error
		if onDelta != nil {
			reply, callErr = cs.model.Stream(ctx, system, msgs, onDelta)
		} else {
			reply, callErr = cs.model.Complete(ctx, system, msgs)
		}
		reply = strings.TrimSpace(reply)
		switch {
		case callErr == nil && reply != "":
			answered = true
		case ctx.Err() != nil:
			// Client went away; keep whatever arrived.
			cs.log.Info("Chat request cancelled", "session_id", session.ID, "error", ctx.Err())
			if reply == "" {
				return nil, ctx.Err()
			}
			answered = true
		case reply != "":
			cs.log.Warn("Model stream ended early", "session_id", session.ID, "error", callErr)
			answered = true
		default:
			cs.log.Warn("Model unavailable, sending fallback", "session_id", session.ID, "error", callErr)
			reply = TutorUnavailableReply
			emit(onDelta, reply)
		}
	}

	// Persist even if the client disconnected mid-stream.
	pctx := context.WithoutCancel(ctx)
	now := cs.now().UTC()
	var asstMsg *types.ChatMessage
	err = cs.tx.InTx(pctx, func(dbc dbctx.Context) error {
		m, err := cs.messageRepo.Create(dbc, &types.ChatMessage{
			ID:        uuid.New(),
			SessionID: session.ID,
			UserID:    userID,
			Role:      chat.RoleAssistant,
			Content:   reply,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		asstMsg = m
		updates := map[string]any{"last_message_at": now}
		if !session.TitleGenerated {
			updates["title"] = deriveTitle(content)
			updates["title_generated"] = true
		}
		return cs.sessionRepo.UpdateFields(dbc, userID, session.ID, updates)
	})
	if err != nil {
		return nil, err
	}
	if updated, err := cs.sessionRepo.GetForUser(dbctx.New(pctx), userID, session.ID); err == nil {
		session = updated
	}

	if answered && cs.activity != nil {
		cs.activity.ChatExchange(userID, content, strings.ToLower(session.Category))
	}
	return &SendResult{
		Session:          session,
		UserMessage:      userMsg,
		AssistantMessage: asstMsg,
		Degraded:         !answered,
	}, nil
}

// systemPrompt returns either the prompt for the model or a canned reply
// that should be sent without calling it.
func (cs *chatService) systemPrompt(dbc dbctx.Context, session *types.ChatSession) (string, string, error) {
	if session.Mode != chat.ModeSyllabus {
		return openTutorPrompt(session.Category), "", nil
	}
	if session.PDFID == nil {
		return "", NoSyllabusReply, nil
	}
	pdf, err := cs.pdfRepo.GetForUser(dbc, session.UserID, *session.PDFID)
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return "", NoSyllabusReply, nil
	}
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(pdf.ExtractedText) == "" {
		return "", NoSyllabusReply, nil
	}
	return syllabusTutorPrompt(pdf, session.Category), "", nil
}

func emit(onDelta func(string), text string) {
	if onDelta != nil && text != "" {
		onDelta(text)
	}
}

