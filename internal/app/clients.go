package app

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/bytesolver-backend/internal/clients/llm"
	"github.com/yungbote/bytesolver-backend/internal/clients/mongo"
	"github.com/yungbote/bytesolver-backend/internal/clients/redis"
	"github.com/yungbote/bytesolver-backend/internal/clients/youtube"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/platform/gcp"
	"github.com/yungbote/bytesolver-backend/internal/platform/objectstore"
	"github.com/yungbote/bytesolver-backend/internal/services"
)

// Clients holds external integrations. Optional ones stay nil when their
// configuration is absent.
type Clients struct {
	LLM     *llm.Router
	Cache   redis.Cache
	Mongo   *mongo.Client
	YouTube youtube.Searcher
	OCR     gcp.OCR
	Store   objectstore.Store
	Google  services.GoogleVerifier
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (*Clients, error) {
	log.Info("Wiring clients...")
	c := &Clients{}

	model, err := wireLLM(log, cfg)
	if err != nil {
		return nil, err
	}
	c.LLM = model

	if cfg.Redis.Addr != "" {
		cache, err := redis.NewCache(log, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   "bytesolver:",
		})
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		c.Cache = cache
	} else {
		log.Info("REDIS_ADDR not set, using in-process cache")
		c.Cache = redis.NewMemoryCache()
	}

	if cfg.MongoURI != "" {
		m, err := mongo.Connect(ctx, log, mongo.Config{URI: cfg.MongoURI, Database: cfg.MongoDB})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init mongo: %w", err)
		}
		c.Mongo = m
	}

	if cfg.YouTubeAPIKey != "" {
		yt, err := youtube.New(ctx, log, youtube.Config{APIKey: cfg.YouTubeAPIKey})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init youtube: %w", err)
		}
		c.YouTube = yt
	} else {
		log.Warn("YOUTUBE_API_KEY not set, video search disabled")
	}

	if cfg.DocAI.Enabled() {
		ocr, err := gcp.NewDocumentOCR(ctx, log, cfg.DocAI)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init document ai: %w", err)
		}
		c.OCR = ocr
	}

	store, err := objectstore.New(ctx, log, cfg.Storage)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	c.Store = store

	if cfg.GoogleClientID != "" {
		g, err := services.NewGoogleVerifier(cfg.GoogleClientID)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init google verifier: %w", err)
		}
		c.Google = g
	} else {
		log.Warn("GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}
	return c, nil
}

// wireLLM orders providers with LLM_PRIMARY first. OpenAI joins only when a
// key is configured.
func wireLLM(log *logger.Logger, cfg Config) (*llm.Router, error) {
	ollama, err := llm.NewOllamaClient(log, llm.OllamaConfig{
		BaseURL:    cfg.OllamaURL,
		Model:      cfg.OllamaModel,
		Timeout:    cfg.LLMTimeout,
		MaxRetries: 2,
	})
	if err != nil {
		return nil, fmt.Errorf("init ollama: %w", err)
	}
	var openai llm.Client
	if cfg.OpenAIAPIKey != "" {
		openai, err = llm.NewOpenAIClient(log, llm.OpenAIConfig{
			BaseURL:    cfg.OpenAIBaseURL,
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			Timeout:    cfg.LLMTimeout,
			MaxRetries: 2,
		})
		if err != nil {
			return nil, fmt.Errorf("init openai: %w", err)
		}
	}
	if cfg.LLMPrimary == "openai" && openai != nil {
		return llm.NewRouter(log, openai, ollama), nil
	}
	return llm.NewRouter(log, ollama, openai), nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = c.Mongo.Close(ctx)
		cancel()
	}
	if c.OCR != nil {
		_ = c.OCR.Close()
	}
}
