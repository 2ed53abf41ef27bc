// Package youtube searches educational videos through the YouTube Data API.
package youtube

import (
	"context"
	"fmt"
	"html"
	"strings"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

const (
	DefaultMaxResults = 12
	MaxResults        = 25
)

type Video struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
	Thumbnail    string `json:"thumbnail"`
	PublishedAt  string `json:"publishedAt"`
}

type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]Video, error)
}

type Config struct {
	APIKey string
	// Endpoint overrides the API base URL, used by tests.
	Endpoint string
}

type client struct {
	log *logger.Logger
	svc *yt.Service
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (Searcher, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, fmt.Errorf("youtube: missing API key")
	}
	opts := []option.ClientOption{option.WithAPIKey(key)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube: init: %w", err)
	}
	return &client{log: log.With("client", "YouTube"), svc: svc}, nil
}

func (c *client) Search(ctx context.Context, query string, max int) ([]Video, error) {
	if max <= 0 {
		max = DefaultMaxResults
	}
	if max > MaxResults {
		max = MaxResults
	}
	resp, err := c.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		SafeSearch("strict").
		VideoEmbeddable("true").
		RelevanceLanguage("en").
		MaxResults(int64(max)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube: search: %w", err)
	}
	out := make([]Video, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.Id == nil || it.Id.VideoId == "" || it.Snippet == nil {
			continue
		}
		out = append(out, Video{
			VideoID:      it.Id.VideoId,
			Title:        html.UnescapeString(it.Snippet.Title),
			Description:  html.UnescapeString(it.Snippet.Description),
			ChannelTitle: html.UnescapeString(it.Snippet.ChannelTitle),
			Thumbnail:    thumbnail(it.Snippet.Thumbnails),
			PublishedAt:  it.Snippet.PublishedAt,
		})
	}
	c.log.Debug("YouTube search", "query", query, "results", len(out))
	return out, nil
}

func thumbnail(t *yt.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*yt.Thumbnail{t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}
