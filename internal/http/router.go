package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/bytesolver-backend/internal/http/handlers"
	httpMW "github.com/yungbote/bytesolver-backend/internal/http/middleware"
	domainpdf "github.com/yungbote/bytesolver-backend/internal/domain/pdf"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

const (
	jsonBodyLimit   = 1 << 20
	uploadBodyLimit = domainpdf.MaxUploadBytes + 1<<20
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware
	AuthLimiter    *httpMW.IPRateLimiter

	AuthHandler     *httpH.AuthHandler
	ChatHandler     *httpH.ChatHandler
	PDFHandler      *httpH.PDFHandler
	QuizHandler     *httpH.QuizHandler
	MockTestHandler *httpH.MockTestHandler
	ProgressHandler *httpH.ProgressHandler
	IdeHandler      *httpH.IdeHandler
	VideoHandler    *httpH.VideoHandler
	TerminalHandler *httpH.TerminalHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(httpMW.Tracing(cfg.ServiceName))
	}
	r.Use(httpMW.RequestContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))
	r.MaxMultipartMemory = 8 << 20

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
		r.GET("/api/health", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// Auth (public)
	if cfg.AuthHandler != nil {
		public := api.Group("/auth", httpMW.BodyLimit(jsonBodyLimit), cfg.AuthLimiter.Middleware())
		public.POST("/register", cfg.AuthHandler.Register)
		public.POST("/login", cfg.AuthHandler.Login)
		public.POST("/google", cfg.AuthHandler.Google)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Terminal (websocket)
	if cfg.TerminalHandler != nil {
		protected.GET("/terminal", cfg.TerminalHandler.Connect)
	}

	// PDF upload carries its own, larger body limit.
	if cfg.PDFHandler != nil {
		protected.POST("/pdf/upload", httpMW.BodyLimit(uploadBodyLimit), cfg.PDFHandler.Upload)
	}

	rest := protected.Group("/", httpMW.BodyLimit(jsonBodyLimit))

	// Auth (protected)
	if cfg.AuthHandler != nil {
		rest.GET("/auth/me", cfg.AuthHandler.Me)
		rest.PATCH("/auth/profile", cfg.AuthHandler.UpdateProfile)
		rest.PUT("/auth/password", cfg.AuthHandler.ChangePassword)
	}

	// Chat
	if cfg.ChatHandler != nil {
		rest.GET("/chat/sessions", cfg.ChatHandler.ListSessions)
		rest.POST("/chat/sessions", cfg.ChatHandler.CreateSession)
		rest.GET("/chat/sessions/:id", cfg.ChatHandler.GetSession)
		rest.PATCH("/chat/sessions/:id", cfg.ChatHandler.UpdateSession)
		rest.DELETE("/chat/sessions/:id", cfg.ChatHandler.DeleteSession)
		rest.POST("/chat/sessions/:id/messages", cfg.ChatHandler.SendMessage)
	}

	// PDF
	if cfg.PDFHandler != nil {
		rest.GET("/pdf", cfg.PDFHandler.List)
		rest.GET("/pdf/:id", cfg.PDFHandler.Get)
		rest.GET("/pdf/:id/file", cfg.PDFHandler.Download)
		rest.DELETE("/pdf/:id", cfg.PDFHandler.Delete)
	}

	// Quiz
	if cfg.QuizHandler != nil {
		rest.POST("/quiz/generate", cfg.QuizHandler.Generate)
		rest.GET("/quiz", cfg.QuizHandler.List)
		rest.GET("/quiz/attempts", cfg.QuizHandler.Attempts)
		rest.GET("/quiz/:id", cfg.QuizHandler.Get)
		rest.POST("/quiz/:id/attempt", cfg.QuizHandler.Attempt)
	}

	// Mock tests
	if cfg.MockTestHandler != nil {
		rest.GET("/mock-tests/exams", cfg.MockTestHandler.Exams)
		rest.POST("/mock-tests/generate", cfg.MockTestHandler.Generate)
		rest.GET("/mock-tests", cfg.MockTestHandler.List)
		rest.GET("/mock-tests/:id", cfg.MockTestHandler.Get)
		rest.POST("/mock-tests/:id/submit", cfg.MockTestHandler.Submit)
	}

	// Stats, streaks, doubts
	if cfg.ProgressHandler != nil {
		rest.GET("/stats/summary", cfg.ProgressHandler.Summary)
		rest.GET("/stats/timeline", cfg.ProgressHandler.Timeline)
		rest.GET("/stats/topics", cfg.ProgressHandler.Topics)
		rest.GET("/stats/quiz", cfg.ProgressHandler.Quiz)
		rest.POST("/stats/study-time", cfg.ProgressHandler.AddStudyTime)
		rest.GET("/stats/report", cfg.ProgressHandler.Report)
		rest.GET("/streaks", cfg.ProgressHandler.Streak)
		rest.GET("/doubts", cfg.ProgressHandler.Doubts)
	}

	// IDE
	if cfg.IdeHandler != nil {
		rest.GET("/ide/projects", cfg.IdeHandler.ListProjects)
		rest.POST("/ide/projects", cfg.IdeHandler.CreateProject)
		rest.GET("/ide/projects/:id", cfg.IdeHandler.GetProject)
		rest.PUT("/ide/projects/:id", cfg.IdeHandler.UpdateProject)
		rest.DELETE("/ide/projects/:id", cfg.IdeHandler.DeleteProject)
		rest.GET("/ide/projects/:id/files", cfg.IdeHandler.ListFiles)
		rest.POST("/ide/projects/:id/files", cfg.IdeHandler.CreateFile)
		rest.GET("/ide/projects/:id/files/:fid", cfg.IdeHandler.GetFile)
		rest.PUT("/ide/projects/:id/files/:fid", cfg.IdeHandler.UpdateFile)
		rest.DELETE("/ide/projects/:id/files/:fid", cfg.IdeHandler.DeleteFile)
		rest.GET("/ide/projects/:id/state", cfg.IdeHandler.GetState)
		rest.PUT("/ide/projects/:id/state", cfg.IdeHandler.SetState)
		rest.POST("/ide/projects/:id/assistant", cfg.IdeHandler.Assist)
		rest.GET("/ide/projects/:id/history", cfg.IdeHandler.History)
	}

	// Videos
	if cfg.VideoHandler != nil {
		rest.GET("/videos", cfg.VideoHandler.Lists)
		rest.GET("/videos/search", cfg.VideoHandler.Search)
		rest.POST("/videos/history", cfg.VideoHandler.AddHistory)
		rest.DELETE("/videos/history", cfg.VideoHandler.ClearHistory)
		rest.POST("/videos/saved", cfg.VideoHandler.AddSaved)
		rest.DELETE("/videos/saved/:videoId", cfg.VideoHandler.RemoveSaved)
	}

	r.NoRoute(notFound)
	return r
}
