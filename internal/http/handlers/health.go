package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db      *gorm.DB
	started time.Time
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

// GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  "ok",
		"uptime":  time.Since(h.started).Seconds(),
		"db":      h.dbStatus(c.Request.Context()),
	})
}

func (h *HealthHandler) dbStatus(ctx context.Context) string {
	if h.db == nil {
		return "down"
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return "down"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return "down"
	}
	return "up"
}
