package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/bytesolver-backend/internal/http/response"
	"github.com/yungbote/bytesolver-backend/internal/services"
)

type MockTestHandler struct {
	mock services.MockTestService
}

func NewMockTestHandler(mock services.MockTestService) *MockTestHandler {
	return &MockTestHandler{mock: mock}
}

// GET /mock-tests/exams
func (h *MockTestHandler) Exams(c *gin.Context) {
	response.RespondOK(c, gin.H{"exams": h.mock.Exams()})
}

// POST /mock-tests/generate
func (h *MockTestHandler) Generate(c *gin.Context) {
	var req struct {
		ExamID string `json:"examId"`
	}
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.mock.Generate(c.Request.Context(), req.ExamID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"mockTest": view})
}

// GET /mock-tests
func (h *MockTestHandler) List(c *gin.Context) {
	tests, err := h.mock.List(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"mockTests": tests})
}

// GET /mock-tests/:id
func (h *MockTestHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "Mock test")
	if !ok {
		return
	}
	view, err := h.mock.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"mockTest": view})
}

// POST /mock-tests/:id/submit
func (h *MockTestHandler) Submit(c *gin.Context) {
	id, ok := pathID(c, "id", "Mock test")
	if !ok {
		return
	}
	var req services.SubmitMockInput
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.mock.Submit(c.Request.Context(), id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"mockTest": view})
}
