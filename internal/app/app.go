package app

import (
	"context"
	"fmt"
	"net"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/bytesolver-backend/internal/data/db"
	bshttp "github.com/yungbote/bytesolver-backend/internal/http"
	"github.com/yungbote/bytesolver-backend/internal/observability"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

// App owns every long-lived resource; Close releases them in reverse order.
type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  *Clients
	Services Services
	Server   *bshttp.Server

	database     *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	bootLog, err := logger.New("development")
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	bootLog.Info("Loading environment variables...")
	cfg, err := LoadConfig(bootLog)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewWithFile(cfg.LogMode, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)

	database, err := db.NewService(log, db.Options{
		Driver:      cfg.DBDriver,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.database = database
	a.DB = database.DB()
	if err := database.AutoMigrateAll(); err != nil {
		a.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients

	reposet, err := wireRepos(ctx, a.DB, clients.Mongo, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Repos = reposet

	serviceset, err := wireServices(a.DB, log, cfg, reposet, clients)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Services = serviceset

	a.Server = bshttp.NewServer(net.JoinHostPort("", cfg.Port), wireRouterConfig(log, cfg, a.DB, serviceset))
	return a, nil
}

// Start launches background workers bound to the app lifetime.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	if a.Services.SideEffects != nil {
		a.Services.SideEffects.Start(ctx)
	}
}

// Run serves HTTP until Shutdown is called.
func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Listening", "port", a.Cfg.Port)
	return a.Server.Run()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return nil
	}
	return a.Server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.SideEffects != nil {
		a.Services.SideEffects.Close()
	}
	a.Clients.Close()
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
