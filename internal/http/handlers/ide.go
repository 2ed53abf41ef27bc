package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/bytesolver-backend/internal/http/response"
	"github.com/yungbote/bytesolver-backend/internal/services"
)

type IdeHandler struct {
	ide services.IdeService
}

func NewIdeHandler(ide services.IdeService) *IdeHandler {
	return &IdeHandler{ide: ide}
}

func projectID(c *gin.Context) (uuid.UUID, bool) { return pathID(c, "id", "Project") }

// GET /ide/projects
func (h *IdeHandler) ListProjects(c *gin.Context) {
	projects, err := h.ide.ListProjects(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"projects": projects})
}

// POST /ide/projects
func (h *IdeHandler) CreateProject(c *gin.Context) {
	var req services.CreateProjectInput
	if !bindJSON(c, &req) {
		return
	}
	detail, err := h.ide.CreateProject(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"project": detail.Project, "files": detail.Files})
}

// GET /ide/projects/:id
func (h *IdeHandler) GetProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	detail, err := h.ide.GetProject(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": detail.Project, "files": detail.Files})
}

// PUT /ide/projects/:id
func (h *IdeHandler) UpdateProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	var req services.UpdateProjectInput
	if !bindJSON(c, &req) {
		return
	}
	project, err := h.ide.UpdateProject(c.Request.Context(), id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": project})
}

// DELETE /ide/projects/:id
func (h *IdeHandler) DeleteProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	if err := h.ide.DeleteProject(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Project deleted"})
}

// GET /ide/projects/:id/files
func (h *IdeHandler) ListFiles(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	files, err := h.ide.ListFiles(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"files": files})
}

// POST /ide/projects/:id/files
func (h *IdeHandler) CreateFile(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	var req services.CreateFileInput
	if !bindJSON(c, &req) {
		return
	}
	file, err := h.ide.CreateFile(c.Request.Context(), id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"file": file})
}

// GET /ide/projects/:id/files/:fid
func (h *IdeHandler) GetFile(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	fid, ok := pathID(c, "fid", "File")
	if !ok {
		return
	}
	file, err := h.ide.GetFile(c.Request.Context(), id, fid)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"file": file})
}

// PUT /ide/projects/:id/files/:fid
func (h *IdeHandler) UpdateFile(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	fid, ok := pathID(c, "fid", "File")
	if !ok {
		return
	}
	var req services.UpdateFileInput
	if !bindJSON(c, &req) {
		return
	}
	file, err := h.ide.UpdateFile(c.Request.Context(), id, fid, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"file": file})
}

// DELETE /ide/projects/:id/files/:fid
func (h *IdeHandler) DeleteFile(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	fid, ok := pathID(c, "fid", "File")
	if !ok {
		return
	}
	if err := h.ide.DeleteFile(c.Request.Context(), id, fid); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "File deleted"})
}

// GET /ide/projects/:id/state
func (h *IdeHandler) GetState(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	state, err := h.ide.GetState(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": state})
}

// PUT /ide/projects/:id/state
func (h *IdeHandler) SetState(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	var req services.ProjectState
	if !bindJSON(c, &req) {
		return
	}
	state, err := h.ide.SetState(c.Request.Context(), id, req.LastOpenFileID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": state})
}

// POST /ide/projects/:id/assistant
func (h *IdeHandler) Assist(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	var req services.AssistInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.ide.Assist(c.Request.Context(), id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"sessionId":        res.SessionID,
		"mode":             res.Mode,
		"reply":            res.Reply,
		"userMessage":      res.UserMessage,
		"assistantMessage": res.AssistantMessage,
	})
}

// GET /ide/projects/:id/history?mode=chat
func (h *IdeHandler) History(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	msgs, err := h.ide.History(c.Request.Context(), id, c.Query("mode"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": msgs})
}
