package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/bytesolver-backend/internal/http/response"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
	"github.com/yungbote/bytesolver-backend/internal/services"
)

type QuizHandler struct {
	quiz services.QuizService
}

func NewQuizHandler(quiz services.QuizService) *QuizHandler {
	return &QuizHandler{quiz: quiz}
}

// POST /quiz/generate
func (h *QuizHandler) Generate(c *gin.Context) {
	var req services.GenerateQuizInput
	if !bindJSON(c, &req) {
		return
	}
	quiz, err := h.quiz.Generate(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"quiz": quiz})
}

// GET /quiz
func (h *QuizHandler) List(c *gin.Context) {
	quizzes, err := h.quiz.List(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quizzes": quizzes})
}

// GET /quiz/:id
func (h *QuizHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "Quiz")
	if !ok {
		return
	}
	quiz, err := h.quiz.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quiz": quiz})
}

// POST /quiz/:id/attempt
func (h *QuizHandler) Attempt(c *gin.Context) {
	id, ok := pathID(c, "id", "Quiz")
	if !ok {
		return
	}
	var req services.SubmitQuizInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.quiz.Submit(c.Request.Context(), id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"attempt": res.Attempt, "quiz": res.Quiz})
}

// GET /quiz/attempts?quizId=
func (h *QuizHandler) Attempts(c *gin.Context) {
	var quizID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("quizId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondErr(c, apierr.Validation("quizId is not a valid id"))
			return
		}
		quizID = &id
	}
	attempts, err := h.quiz.Attempts(c.Request.Context(), quizID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempts": attempts})
}
