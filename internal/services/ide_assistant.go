package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/bytesolver-backend/internal/clients/llm"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/domain/chat"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
	"github.com/yungbote/bytesolver-backend/internal/platform/promptstyle"
)

const (
	AssistExplain  = "explain"
	AssistDebug    = "debug"
	AssistOptimize = "optimize"
	AssistFix      = "fix"
	AssistChat     = "chat"

	ideCategory        = "ide"
	assistHistoryTurns = 20
	assistCodeChars    = 16000
)

var assistModes = map[string]string{
	AssistExplain:  "Explain",
	AssistDebug:    "Debug",
	AssistOptimize: "Optimize",
	AssistFix:      "Fix",
	AssistChat:     "Chat",
}

// AssistantUnavailableReply is stored when no model provider answered.
const AssistantUnavailableReply = "Sorry, the coding assistant is unavailable right now. Please try again in a moment."

type AssistInput struct {
	Mode        string `json:"mode"`
	Message     string `json:"message"`
	Code        string `json:"code"`
	Language    string `json:"language"`
	ErrorOutput string `json:"errorOutput"`
}

type AssistResult struct {
	SessionID        uuid.UUID          `json:"sessionId"`
	Mode             string             `json:"mode"`
	Reply            string             `json:"reply"`
	UserMessage      *types.ChatMessage `json:"userMessage"`
	AssistantMessage *types.ChatMessage `json:"assistantMessage"`
	Degraded         bool               `json:"degraded"`
}

func normalizeAssistMode(mode string) (string, bool) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = AssistChat
	}
	_, ok := assistModes[mode]
	return mode, ok
}

func (is *ideService) Assist(ctx context.Context, projectID uuid.UUID, in AssistInput) (*AssistResult, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	mode, ok := normalizeAssistMode(in.Mode)
	if !ok {
		return nil, apierr.Validation("mode must be one of explain, debug, optimize, fix, chat")
	}
	if strings.TrimSpace(in.Message) == "" && strings.TrimSpace(in.Code) == "" {
		return nil, apierr.Validation("message or code is required")
	}
	if len([]rune(in.Message)) > maxMessageChars {
		return nil, apierr.Validation("message is too long")
	}

	dbc := dbctx.New(ctx)
	p, err := is.projectRepo.GetForUser(dbc, userID, projectID)
	if err != nil {
		return nil, notFound(err, "Project")
	}
	lang := p.Language
	if strings.TrimSpace(in.Language) != "" {
		if l, ok := normalizeIdeLanguage(in.Language); ok {
			lang = l
		}
	}

	session, err := is.assistSession(dbc, p, mode)
	if err != nil {
		return nil, err
	}
	history, err := is.messageRepo.ListBySession(dbc, session.ID)
	if err != nil {
		return nil, err
	}
	if len(history) > assistHistoryTurns {
		history = history[len(history)-assistHistoryTurns:]
	}

	content := assistUserContent(mode, lang, in)
	userMsg, err := is.messageRepo.Create(dbc, &types.ChatMessage{
		ID:        uuid.New(),
		SessionID: session.ID,
		UserID:    userID,
		Role:      chat.RoleUser,
		Content:   content,
		CreatedAt: is.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: content})
	reply, callErr := is.model.Complete(ctx, assistSystemPrompt(mode, p, lang), msgs)
	reply = strings.TrimSpace(reply)
	degraded := false
	if callErr != nil || reply == "" {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		is.log.Warn("Coding assistant unavailable", "project_id", p.ID, "mode", mode, "error", callErr)
		reply = AssistantUnavailableReply
		degraded = true
	}

	pctx := context.WithoutCancel(ctx)
	now := is.now().UTC()
	var asstMsg *types.ChatMessage
	err = is.tx.InTx(pctx, func(dbc dbctx.Context) error {
		m, err := is.messageRepo.Create(dbc, &types.ChatMessage{
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
		return is.sessionRepo.UpdateFields(dbc, userID, session.ID, map[string]any{"last_message_at": now})
	})
	if err != nil {
		return nil, err
	}
	return &AssistResult{
		SessionID:        session.ID,
		Mode:             mode,
		Reply:            reply,
		UserMessage:      userMsg,
		AssistantMessage: asstMsg,
		Degraded:         degraded,
	}, nil
}

// assistSession returns the project's session for mode, creating and
// recording a new one when none exists or the recorded one is gone.
func (is *ideService) assistSession(dbc dbctx.Context, p *types.IdeProject, mode string) (*types.ChatSession, error) {
	sessions := decodeSessionMap(p.ChatSessions)
	if raw, ok := sessions[mode]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			s, err := is.sessionRepo.GetForUser(dbc, p.UserID, id)
			if err == nil {
				return s, nil
			}
			if !errors.Is(err, pkgerrors.ErrNotFound) {
				return nil, err
			}
		}
	}

	now := is.now().UTC()
	s, err := is.sessionRepo.Create(dbc, &types.ChatSession{
		ID:             uuid.New(),
		UserID:         p.UserID,
		Title:          truncateRunes(fmt.Sprintf("%s: %s", assistModes[mode], p.Name), maxTitleChars),
		Mode:           chat.ModeOpen,
		Category:       ideCategory,
		TitleGenerated: true,
		LastMessageAt:  now,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, err
	}
	sessions[mode] = s.ID.String()
	raw, err := json.Marshal(sessions)
	if err != nil {
		return nil, err
	}
	if err := is.projectRepo.UpdateFields(dbc, p.UserID, p.ID, map[string]any{"chat_sessions": datatypes.JSON(raw)}); err != nil {
		return nil, notFound(err, "Project")
	}
	p.ChatSessions = raw
	return s, nil
}

func (is *ideService) History(ctx context.Context, projectID uuid.UUID, mode string) ([]*types.ChatMessage, error) {
	userID, dbc, err := is.scope(ctx)
	if err != nil {
		return nil, err
	}
	mode, ok := normalizeAssistMode(mode)
	if !ok {
		return nil, apierr.Validation("mode must be one of explain, debug, optimize, fix, chat")
	}
	p, err := is.projectRepo.GetForUser(dbc, userID, projectID)
	if err != nil {
		return nil, notFound(err, "Project")
	}
	empty := []*types.ChatMessage{}
	raw, ok := decodeSessionMap(p.ChatSessions)[mode]
	if !ok {
		return empty, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return empty, nil
	}
	if _, err := is.sessionRepo.GetForUser(dbc, userID, id); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return empty, nil
		}
		return nil, err
	}
	msgs, err := is.messageRepo.ListBySession(dbc, id)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		return empty, nil
	}
	return msgs, nil
}

func assistSystemPrompt(mode string, p *types.IdeProject, lang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the coding assistant inside the student's %s project %q.", lang, p.Name)
	switch mode {
	case AssistExplain:
		b.WriteString("\nExplain what the code does, section by section, for a student. Mention the key concepts it uses.")
	case AssistDebug:
		b.WriteString("\nFind the bugs. For each one give the line, the cause and the fix. Use the error output when present.")
	case AssistOptimize:
		b.WriteString("\nSuggest concrete improvements to performance and readability, then show the improved code.")
	case AssistFix:
		b.WriteString("\nReturn the corrected code in one fenced block first, then a short list of what changed.")
	default:
		b.WriteString("\nAnswer the student's programming question. Refer to their code when it is given.")
	}
	return promptstyle.ApplySystem(b.String(), promptstyle.ModeCode)
}

func assistUserContent(mode, lang string, in AssistInput) string {
	var b strings.Builder
	if msg := strings.TrimSpace(in.Message); msg != "" {
		b.WriteString(msg)
	} else {
		fmt.Fprintf(&b, "%s this code.", assistModes[mode])
	}
	if code := strings.TrimSpace(in.Code); code != "" {
		fmt.Fprintf(&b, "\n\n```%s\n%s\n```", lang, truncateRunes(code, assistCodeChars))
	}
	if out := strings.TrimSpace(in.ErrorOutput); out != "" {
		fmt.Fprintf(&b, "\n\nError output:\n```\n%s\n```", truncateRunes(out, 4000))
	}
	return b.String()
}
