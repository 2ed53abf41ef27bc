package app

import (
	"gorm.io/gorm"

	bshttp "github.com/yungbote/bytesolver-backend/internal/http"
	httpH "github.com/yungbote/bytesolver-backend/internal/http/handlers"
	httpMW "github.com/yungbote/bytesolver-backend/internal/http/middleware"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

func wireRouterConfig(log *logger.Logger, cfg Config, gdb *gorm.DB, s Services) bshttp.RouterConfig {
	log.Info("Wiring handlers...")
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return bshttp.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.AllowedOrigins,

		AuthMiddleware: httpMW.NewAuthMiddleware(log, s.Auth),
		AuthLimiter:    httpMW.NewIPRateLimiter(cfg.AuthRateLimit),

		AuthHandler:     httpH.NewAuthHandler(s.Auth),
		ChatHandler:     httpH.NewChatHandler(log, s.Chat),
		PDFHandler:      httpH.NewPDFHandler(log, s.PDF),
		QuizHandler:     httpH.NewQuizHandler(s.Quiz),
		MockTestHandler: httpH.NewMockTestHandler(s.MockTest),
		ProgressHandler: httpH.NewProgressHandler(s.Stats, s.Streak, s.Doubt),
		IdeHandler:      httpH.NewIdeHandler(s.Ide),
		VideoHandler:    httpH.NewVideoHandler(s.Video),
		TerminalHandler: httpH.NewTerminalHandler(log, s.Terminal, cfg.AllowedOrigins),
		HealthHandler:   httpH.NewHealthHandler(gdb),
	}
}
