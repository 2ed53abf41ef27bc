package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/yungbote/bytesolver-backend/internal/observability"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/platform/envutil"
	"github.com/yungbote/bytesolver-backend/internal/platform/gcp"
	"github.com/yungbote/bytesolver-backend/internal/platform/objectstore"
)

const devJWTSecret = "bytesolver-dev-secret-change-me"

type Config struct {
	Port    string
	Env     string
	LogMode string
	LogFile *logger.FileSink

	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	JWTSecret      string
	JWTExpiry      time.Duration
	GoogleClientID string
	AuthRateLimit  int

	AllowedOrigins []string

	LLMPrimary    string
	OllamaURL     string
	OllamaModel   string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	LLMTimeout    time.Duration

	Storage  objectstore.Config
	DocAI    gcp.DocumentConfig
	Redis    RedisConfig
	MongoURI string
	MongoDB  string

	YouTubeAPIKey string

	TerminalTimeout      time.Duration
	TerminalMaxProcesses int
	TerminalTempDir      string

	SideEffectWorkers int
	SideEffectQueue   int
	StatsTimezone     *time.Location

	Otel observability.OtelConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c Config) Production() bool {
	return c.Env == "production" || c.Env == "prod"
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:    envutil.String("PORT", "5000"),
		Env:     strings.ToLower(envutil.String("APP_ENV", "development")),
		LogMode: envutil.String("LOG_MODE", "development"),

		DBDriver:    envutil.String("DB_DRIVER", "postgres"),
		DatabaseURL: envutil.String("DATABASE_URL", ""),
		SQLitePath:  envutil.String("SQLITE_PATH", "bytesolver.db"),

		JWTSecret:      envutil.String("JWT_SECRET", ""),
		JWTExpiry:      envutil.Duration("JWT_EXPIRES_IN", 7*24*time.Hour),
		GoogleClientID: envutil.String("GOOGLE_CLIENT_ID", ""),
		AuthRateLimit:  envutil.Int("AUTH_RATE_LIMIT", 20),

		AllowedOrigins: envutil.List("FRONTEND_URLS", nil),

		LLMPrimary:    strings.ToLower(envutil.String("LLM_PRIMARY", "ollama")),
		OllamaURL:     envutil.String("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:   envutil.String("OLLAMA_MODEL", "llama3.1"),
		OpenAIBaseURL: envutil.String("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIAPIKey:  envutil.String("OPENAI_API_KEY", ""),
		OpenAIModel:   envutil.String("OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:    envutil.Duration("LLM_TIMEOUT", 2*time.Minute),

		DocAI: gcp.DocumentConfig{
			ProjectID:   envutil.String("DOCAI_PROJECT_ID", ""),
			Location:    envutil.String("DOCAI_LOCATION", "us"),
			ProcessorID: envutil.String("DOCAI_PROCESSOR_ID", ""),
			Credentials: envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", ""),
		},
		Redis: RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},
		MongoURI: envutil.String("MONGO_URI", ""),
		MongoDB:  envutil.String("MONGO_DB", ""),

		YouTubeAPIKey: envutil.String("YOUTUBE_API_KEY", ""),

		TerminalTimeout:      envutil.Duration("TERMINAL_TIMEOUT", 30*time.Second),
		TerminalMaxProcesses: envutil.Int("TERMINAL_MAX_PROCESSES", 0),
		TerminalTempDir:      envutil.String("TERMINAL_TMP_DIR", ""),

		SideEffectWorkers: envutil.Int("SIDE_EFFECT_WORKERS", 4),
		SideEffectQueue:   envutil.Int("SIDE_EFFECT_QUEUE", 256),
	}

	if path := envutil.String("LOG_FILE", ""); path != "" {
		cfg.LogFile = &logger.FileSink{
			Path:       path,
			MaxSizeMB:  envutil.Int("LOG_MAX_SIZE_MB", 50),
			MaxBackups: envutil.Int("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: envutil.Int("LOG_MAX_AGE_DAYS", 14),
		}
	}

	emulator := envutil.String("STORAGE_EMULATOR_HOST", "")
	mode, err := objectstore.ParseMode(envutil.String("STORAGE_MODE", ""), emulator)
	if err != nil {
		return Config{}, err
	}
	cfg.Storage = objectstore.Config{
		Mode:         mode,
		LocalDir:     envutil.String("UPLOAD_DIR", "uploads"),
		Bucket:       envutil.String("PDF_GCS_BUCKET", ""),
		EmulatorHost: emulator,
		Credentials:  envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", ""),
	}

	tz := envutil.String("STATS_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("STATS_TIMEZONE %q: %w", tz, err)
	}
	cfg.StatsTimezone = loc

	cfg.Otel = observability.OtelConfig{
		Enabled:     envutil.Bool("OTEL_ENABLED", false),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "bytesolver-api"),
		Environment: cfg.Env,
		Version:     envutil.String("APP_VERSION", "dev"),
		Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
		Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		SampleRatio: envFloat("OTEL_SAMPLER_RATIO", 0.1),
	}

	if cfg.JWTSecret == "" {
		if cfg.Production() {
			return Config{}, fmt.Errorf("JWT_SECRET is required in production")
		}
		log.Warn("JWT_SECRET not set, using the development secret")
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.LLMPrimary != "ollama" && cfg.LLMPrimary != "openai" {
		return Config{}, fmt.Errorf("LLM_PRIMARY must be ollama or openai, got %q", cfg.LLMPrimary)
	}
	if err := cfg.Storage.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envFloat(name string, def float64) float64 {
	f, err := strconv.ParseFloat(envutil.String(name, ""), 64)
	if err != nil {
		return def
	}
	return f
}
