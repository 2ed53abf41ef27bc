package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yungbote/bytesolver-backend/internal/pkg/ctxutil"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/terminal"
)

type TerminalHandler struct {
	log      *logger.Logger
	runner   *terminal.Runner
	upgrader websocket.Upgrader
}

// NewTerminalHandler accepts upgrades from the listed origins; an empty list
// accepts any origin.
func NewTerminalHandler(log *logger.Logger, runner *terminal.Runner, origins []string) *TerminalHandler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &TerminalHandler{
		log:    log.With("handler", "TerminalHandler"),
		runner: runner,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// GET /terminal (websocket, token in ?token=)
func (h *TerminalHandler) Connect(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Terminal upgrade failed", "error", err)
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	log := h.log.With("user_id", userID)
	log.Debug("Terminal connected")
	terminal.NewSession(log, conn, h.runner).Serve(c.Request.Context())
	log.Debug("Terminal disconnected")
}
