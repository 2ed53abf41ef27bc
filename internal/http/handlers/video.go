package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/bytesolver-backend/internal/http/response"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/services"
)

type VideoHandler struct {
	videos services.VideoService
}

func NewVideoHandler(videos services.VideoService) *VideoHandler {
	return &VideoHandler{videos: videos}
}

type videoReq struct {
	Video types.VideoItem `json:"video"`
}

// GET /videos/search?q=&max=
func (h *VideoHandler) Search(c *gin.Context) {
	results, err := h.videos.Search(c.Request.Context(), c.Query("q"), queryInt(c, "max", 0))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"videos": results})
}

// GET /videos
func (h *VideoHandler) Lists(c *gin.Context) {
	lists, err := h.videos.Lists(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": lists.History, "saved": lists.Saved})
}

// POST /videos/history
func (h *VideoHandler) AddHistory(c *gin.Context) {
	var req videoReq
	if !bindJSON(c, &req) {
		return
	}
	lists, err := h.videos.AddHistory(c.Request.Context(), req.Video)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": lists.History, "saved": lists.Saved})
}

// DELETE /videos/history
func (h *VideoHandler) ClearHistory(c *gin.Context) {
	lists, err := h.videos.ClearHistory(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": lists.History, "saved": lists.Saved})
}

// POST /videos/saved
func (h *VideoHandler) AddSaved(c *gin.Context) {
	var req videoReq
	if !bindJSON(c, &req) {
		return
	}
	lists, err := h.videos.AddSaved(c.Request.Context(), req.Video)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": lists.History, "saved": lists.Saved})
}

// DELETE /videos/saved/:videoId
func (h *VideoHandler) RemoveSaved(c *gin.Context) {
	lists, err := h.videos.RemoveSaved(c.Request.Context(), c.Param("videoId"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": lists.History, "saved": lists.Saved})
}
