package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/bytesolver-backend/internal/clients/redis"
	"github.com/yungbote/bytesolver-backend/internal/clients/youtube"
	"github.com/yungbote/bytesolver-backend/internal/data/repos"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
)

const (
	VideoSearchTTL     = 6 * time.Hour
	maxVideoQueryChars = 200
)

type VideoService interface {
	Search(ctx context.Context, query string, max int) ([]youtube.Video, error)
	Lists(ctx context.Context) (*types.VideoLists, error)
	AddHistory(ctx context.Context, item types.VideoItem) (*types.VideoLists, error)
	ClearHistory(ctx context.Context) (*types.VideoLists, error)
	AddSaved(ctx context.Context, item types.VideoItem) (*types.VideoLists, error)
	RemoveSaved(ctx context.Context, videoID string) (*types.VideoLists, error)
}

type videoService struct {
	log      *logger.Logger
	store    repos.VideoStore
	searcher youtube.Searcher
	cache    redis.Cache
}

// NewVideoService accepts a nil searcher (search then answers 503) and a nil
// cache (every search goes upstream).
func NewVideoService(log *logger.Logger, store repos.VideoStore, searcher youtube.Searcher, cache redis.Cache) VideoService {
	return &videoService{
		log:      log.With("service", "VideoService", "store", store.Name()),
		store:    store,
		searcher: searcher,
		cache:    cache,
	}
}

func (vs *videoService) Search(ctx context.Context, query string, max int) ([]youtube.Video, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	query = spaceRe.ReplaceAllString(strings.TrimSpace(query), " ")
	if query == "" {
		return nil, apierr.Validation("q is required")
	}
	if len([]rune(query)) > maxVideoQueryChars {
		return nil, apierr.Validation("q is too long")
	}
	if vs.searcher == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "VIDEO_SEARCH_UNAVAILABLE", errors.New("Video search is not configured"))
	}
	if max <= 0 {
		max = youtube.DefaultMaxResults
	}
	max = clampInt(max, 1, youtube.MaxResults)

	key := fmt.Sprintf("videos:search:%d:%s", max, strings.ToLower(query))
	if vs.cache != nil {
		var cached []youtube.Video
		hit, err := vs.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			vs.log.Warn("Video cache read failed", "error", err)
		}
		if hit {
			return cached, nil
		}
	}

	out, err := vs.searcher.Search(ctx, query, max)
	if err != nil {
		return nil, apierr.Upstream("VIDEO_SEARCH_FAILED", err)
	}
	if vs.cache != nil {
		if err := vs.cache.SetJSON(ctx, key, out, VideoSearchTTL); err != nil {
			vs.log.Warn("Video cache write failed", "error", err)
		}
	}
	return out, nil
}

func (vs *videoService) Lists(ctx context.Context) (*types.VideoLists, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return vs.store.Get(ctx, userID)
}

func validVideoItem(item types.VideoItem) (types.VideoItem, error) {
	item.VideoID = strings.TrimSpace(item.VideoID)
	item.Title = strings.TrimSpace(item.Title)
	if item.VideoID == "" {
		return item, apierr.Validation("video.videoId is required")
	}
	if item.Title == "" {
		return item, apierr.Validation("video.title is required")
	}
	item.Description = truncateRunes(item.Description, 500)
	return item, nil
}

func (vs *videoService) AddHistory(ctx context.Context, item types.VideoItem) (*types.VideoLists, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	item, err = validVideoItem(item)
	if err != nil {
		return nil, err
	}
	item.At = time.Time{}
	return vs.store.PushHistory(ctx, userID, item)
}

func (vs *videoService) ClearHistory(ctx context.Context) (*types.VideoLists, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return vs.store.ClearHistory(ctx, userID)
}

func (vs *videoService) AddSaved(ctx context.Context, item types.VideoItem) (*types.VideoLists, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	item, err = validVideoItem(item)
	if err != nil {
		return nil, err
	}
	item.At = time.Time{}
	return vs.store.AddSaved(ctx, userID, item)
}

func (vs *videoService) RemoveSaved(ctx context.Context, videoID string) (*types.VideoLists, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, apierr.Validation("videoId is required")
	}
	return vs.store.RemoveSaved(ctx, userID, videoID)
}
