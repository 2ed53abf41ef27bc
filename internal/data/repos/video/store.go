package video

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/domain/video"
)

// Store persists a user's watch history and saved videos. Documents are
// created lazily on first write; reads of a missing document return empty lists.
type Store interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.VideoLists, error)
	PushHistory(ctx context.Context, userID uuid.UUID, item types.VideoItem) (*types.VideoLists, error)
	ClearHistory(ctx context.Context, userID uuid.UUID) (*types.VideoLists, error)
	AddSaved(ctx context.Context, userID uuid.UUID, item types.VideoItem) (*types.VideoLists, error)
	RemoveSaved(ctx context.Context, userID uuid.UUID, videoID string) (*types.VideoLists, error)
	Name() string
}

func emptyLists() *types.VideoLists {
	return &types.VideoLists{History: []types.VideoItem{}, Saved: []types.VideoItem{}}
}

func stamp(item types.VideoItem) types.VideoItem {
	item.VideoID = strings.TrimSpace(item.VideoID)
	if item.At.IsZero() {
		item.At = time.Now().UTC()
	}
	return item
}

// prependHistory puts item first, drops older entries with the same id and
// caps the list at video.MaxHistory.
func prependHistory(list []types.VideoItem, item types.VideoItem) []types.VideoItem {
	out := make([]types.VideoItem, 0, len(list)+1)
	out = append(out, item)
	for _, it := range list {
		if it.VideoID == item.VideoID {
			continue
		}
		out = append(out, it)
		if len(out) == video.MaxHistory {
			break
		}
	}
	return out
}

// appendSaved is a no-op when the id is already saved.
func appendSaved(list []types.VideoItem, item types.VideoItem) []types.VideoItem {
	for _, it := range list {
		if it.VideoID == item.VideoID {
			return list
		}
	}
	return append(list, item)
}

func removeByID(list []types.VideoItem, videoID string) []types.VideoItem {
	out := list[:0:0]
	for _, it := range list {
		if it.VideoID != videoID {
			out = append(out, it)
		}
	}
	return out
}
