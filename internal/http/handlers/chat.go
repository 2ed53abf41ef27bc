package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bytesolver-backend/internal/http/response"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/services"
)

type ChatHandler struct {
	log  *logger.Logger
	chat services.ChatService
}

func NewChatHandler(log *logger.Logger, chat services.ChatService) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), chat: chat}
}

// GET /chat/sessions
func (h *ChatHandler) ListSessions(c *gin.Context) {
	sessions, err := h.chat.ListSessions(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": sessions})
}

// POST /chat/sessions
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req services.CreateSessionInput
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.chat.CreateSession(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"session": session})
}

// GET /chat/sessions/:id
func (h *ChatHandler) GetSession(c *gin.Context) {
	id, ok := pathID(c, "id", "Session")
	if !ok {
		return
	}
	detail, err := h.chat.GetSession(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": detail.Session, "messages": detail.Messages})
}

// PATCH /chat/sessions/:id
func (h *ChatHandler) UpdateSession(c *gin.Context) {
	id, ok := pathID(c, "id", "Session")
	if !ok {
		return
	}
	var req services.UpdateSessionInput
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.chat.UpdateSession(c.Request.Context(), id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

// DELETE /chat/sessions/:id
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	id, ok := pathID(c, "id", "Session")
	if !ok {
		return
	}
	if err := h.chat.DeleteSession(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Session deleted"})
}

// POST /chat/sessions/:id/messages
// Streams SSE frames when the client asks for text/event-stream or ?stream=true.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	id, ok := pathID(c, "id", "Session")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if !wantsStream(c) {
		res, err := h.chat.SendMessage(c.Request.Context(), id, req.Content, nil)
		if err != nil {
			response.RespondErr(c, err)
			return
		}
		response.RespondOK(c, gin.H{
			"session":          res.Session,
			"userMessage":      res.UserMessage,
			"assistantMessage": res.AssistantMessage,
		})
		return
	}

	sse := &sseWriter{c: c}
	res, err := h.chat.SendMessage(c.Request.Context(), id, req.Content, func(delta string) {
		sse.send(gin.H{"content": delta})
	})
	if err != nil {
		if !sse.started {
			response.RespondErr(c, err)
			return
		}
		_, code, msg := response.Classify(err)
		h.log.Warn("Chat stream failed", "session_id", id, "code", code, "error", err)
		sse.send(gin.H{"error": msg})
		return
	}
	sse.send(gin.H{"done": true, "messageId": res.AssistantMessage.ID, "session": res.Session})
}

func wantsStream(c *gin.Context) bool {
	if strings.EqualFold(c.Query("stream"), "true") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}

// sseWriter writes headers lazily so failures before the first frame can
// still answer with a JSON error.
type sseWriter struct {
	c       *gin.Context
	started bool
}

func (s *sseWriter) send(payload any) {
	w := s.c.Writer
	if !s.started {
		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		s.started = true
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", raw)
	w.Flush()
}
