package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/bytesolver-backend/internal/pkg/httpx"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

type ollamaClient struct {
	log        *logger.Logger
	baseURL    string
	model      string
	temp       float64
	httpClient *http.Client
	maxRetries int
}

func NewOllamaClient(log *logger.Logger, cfg OllamaConfig) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing ollama base url")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "llama3.2"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &ollamaClient{
		log:        log.With("service", "OllamaClient"),
		baseURL:    baseURL,
		model:      model,
		temp:       cfg.Temperature,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: cfg.MaxRetries,
	}, nil
}

func (c *ollamaClient) Name() string { return "ollama" }

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatChunk struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

func (c *ollamaClient) request(system string, messages []Message, stream bool) ollamaChatRequest {
	req := ollamaChatRequest{
		Model:    c.model,
		Messages: withSystem(system, messages),
		Stream:   stream,
	}
	if c.temp > 0 {
		req.Options = map[string]any{"temperature": c.temp}
	}
	return req
}

// open posts to /api/chat, retrying retryable failures before any body is read.
func (c *ollamaClient) open(ctx context.Context, body ollamaChatRequest) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		if err == nil {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			_ = resp.Body.Close()
			err = &httpx.StatusError{Service: "ollama", Status: resp.StatusCode, Body: string(b)}
		}
		if !httpx.IsRetryableError(err) || attempt >= c.maxRetries || httpx.IsUnreachable(err) {
			return nil, err
		}
		sleepFor := httpx.RetryAfterDuration(resp, httpx.Backoff(attempt, 500*time.Millisecond, 8*time.Second), 10*time.Second)
		c.log.Warn("Ollama request retrying", "attempt", attempt+1, "max_retries", c.maxRetries, "sleep", sleepFor.String(), "error", err.Error())
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return nil, err
		}
	}
}

func (c *ollamaClient) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	resp, err := c.open(ctx, c.request(system, messages, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out ollamaChatChunk
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama decode: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}
	return out.Message.Content, nil
}

// Stream reads newline-delimited JSON chunks until done.
func (c *ollamaClient) Stream(ctx context.Context, system string, messages []Message, onDelta func(string)) (string, error) {
	resp, err := c.open(ctx, c.request(system, messages, true))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var full strings.Builder
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk ollamaChatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return full.String(), fmt.Errorf("ollama stream decode: %w", err)
		}
		if chunk.Error != "" {
			return full.String(), fmt.Errorf("ollama stream: %s", chunk.Error)
		}
		if d := chunk.Message.Content; d != "" {
			full.WriteString(d)
			if onDelta != nil {
				onDelta(d)
			}
		}
		if chunk.Done {
			return full.String(), nil
		}
	}
	if err := sc.Err(); err != nil {
		return full.String(), err
	}
	return full.String(), nil
}
