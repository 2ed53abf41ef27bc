package video

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

type gormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGormStore(db *gorm.DB, baseLog *logger.Logger) Store {
	return &gormStore{db: db, log: baseLog.With("repo", "VideoLearningRepo")}
}

func (s *gormStore) Name() string { return "sql" }

func (s *gormStore) Get(ctx context.Context, userID uuid.UUID) (*types.VideoLists, error) {
	var row types.VideoLearning
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return emptyLists(), nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRow(&row), nil
}

func (s *gormStore) PushHistory(ctx context.Context, userID uuid.UUID, item types.VideoItem) (*types.VideoLists, error) {
	item = stamp(item)
	return s.mutate(ctx, userID, func(l *types.VideoLists) {
		l.History = prependHistory(l.History, item)
	})
}

func (s *gormStore) ClearHistory(ctx context.Context, userID uuid.UUID) (*types.VideoLists, error) {
	return s.mutate(ctx, userID, func(l *types.VideoLists) {
		l.History = []types.VideoItem{}
	})
}

func (s *gormStore) AddSaved(ctx context.Context, userID uuid.UUID, item types.VideoItem) (*types.VideoLists, error) {
	item = stamp(item)
	return s.mutate(ctx, userID, func(l *types.VideoLists) {
		l.Saved = appendSaved(l.Saved, item)
	})
}

func (s *gormStore) RemoveSaved(ctx context.Context, userID uuid.UUID, videoID string) (*types.VideoLists, error) {
	return s.mutate(ctx, userID, func(l *types.VideoLists) {
		l.Saved = removeByID(l.Saved, videoID)
	})
}

// mutate creates the row if missing, then applies fn under a row lock
// (postgres) or the database write lock (sqlite).
func (s *gormStore) mutate(ctx context.Context, userID uuid.UUID, fn func(*types.VideoLists)) (*types.VideoLists, error) {
	var out *types.VideoLists
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := &types.VideoLearning{
			ID:      uuid.New(),
			UserID:  userID,
			History: datatypes.JSON([]byte(`[]`)),
			Saved:   datatypes.JSON([]byte(`[]`)),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(seed).Error; err != nil {
			return err
		}

		q := tx.Where("user_id = ?", userID)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var row types.VideoLearning
		if err := q.Take(&row).Error; err != nil {
			return err
		}

		lists := decodeRow(&row)
		fn(lists)

		hist, err := json.Marshal(lists.History)
		if err != nil {
			return err
		}
		saved, err := json.Marshal(lists.Saved)
		if err != nil {
			return err
		}
		if err := tx.Model(&types.VideoLearning{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"history": datatypes.JSON(hist),
				"saved":   datatypes.JSON(saved),
			}).Error; err != nil {
			return err
		}
		out = lists
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeRow(row *types.VideoLearning) *types.VideoLists {
	out := emptyLists()
	if len(row.History) > 0 {
		_ = json.Unmarshal(row.History, &out.History)
	}
	if len(row.Saved) > 0 {
		_ = json.Unmarshal(row.Saved, &out.Saved)
	}
	if out.History == nil {
		out.History = []types.VideoItem{}
	}
	if out.Saved == nil {
		out.Saved = []types.VideoItem{}
	}
	return out
}
