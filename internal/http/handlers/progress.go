package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bytesolver-backend/internal/http/response"
	"github.com/yungbote/bytesolver-backend/internal/services"
)

// ProgressHandler serves statistics, streaks and doubts.
type ProgressHandler struct {
	stats   services.StatsService
	streaks services.StreakService
	doubts  services.DoubtService
}

func NewProgressHandler(stats services.StatsService, streaks services.StreakService, doubts services.DoubtService) *ProgressHandler {
	return &ProgressHandler{stats: stats, streaks: streaks, doubts: doubts}
}

// GET /stats/summary
func (h *ProgressHandler) Summary(c *gin.Context) {
	summary, err := h.stats.Summary(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"summary": summary})
}

// GET /stats/timeline?days=30
func (h *ProgressHandler) Timeline(c *gin.Context) {
	days, err := h.stats.Timeline(c.Request.Context(), queryInt(c, "days", 30))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"timeline": days})
}

// GET /stats/topics
func (h *ProgressHandler) Topics(c *gin.Context) {
	topics, err := h.stats.Topics(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topics": topics})
}

// GET /stats/quiz
func (h *ProgressHandler) Quiz(c *gin.Context) {
	stats, err := h.stats.Quiz(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quiz": stats})
}

// POST /stats/study-time
func (h *ProgressHandler) AddStudyTime(c *gin.Context) {
	var req struct {
		Minutes int `json:"minutes"`
	}
	if !bindJSON(c, &req) {
		return
	}
	day, err := h.stats.AddStudyTime(c.Request.Context(), req.Minutes)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"today": day})
}

// GET /stats/report
func (h *ProgressHandler) Report(c *gin.Context) {
	doc, err := h.stats.Report(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	name := fmt.Sprintf("bytesolver-report-%s.pdf", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", doc)
}

// GET /streaks
func (h *ProgressHandler) Streak(c *gin.Context) {
	streak, err := h.streaks.Get(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"streak": streak})
}

// GET /doubts?sort=recent|frequent&limit=N
func (h *ProgressHandler) Doubts(c *gin.Context) {
	doubts, err := h.doubts.List(c.Request.Context(), c.Query("sort"), queryInt(c, "limit", 0))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"doubts": doubts})
}
