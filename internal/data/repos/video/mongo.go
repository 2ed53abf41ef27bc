package video

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/domain/video"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

const mongoCollection = "video_learning"

type mongoDoc struct {
	UserID    string            `bson:"userId"`
	History   []types.VideoItem `bson:"history"`
	Saved     []types.VideoItem `bson:"saved"`
	CreatedAt time.Time         `bson:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

type mongoStore struct {
	coll *mongo.Collection
	log  *logger.Logger
}

// NewMongoStore uses one document per user keyed by userId.
func NewMongoStore(ctx context.Context, db *mongo.Database, baseLog *logger.Logger) (Store, error) {
	coll := db.Collection(mongoCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return &mongoStore{coll: coll, log: baseLog.With("repo", "VideoLearningMongo")}, nil
}

func (s *mongoStore) Name() string { return "mongo" }

func (s *mongoStore) Get(ctx context.Context, userID uuid.UUID) (*types.VideoLists, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"userId": userID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return emptyLists(), nil
	}
	if err != nil {
		return nil, err
	}
	out := emptyLists()
	if doc.History != nil {
		out.History = doc.History
	}
	if doc.Saved != nil {
		out.Saved = doc.Saved
	}
	return out, nil
}

// ensure creates the user's document when it does not exist yet.
func (s *mongoStore) ensure(ctx context.Context, userID uuid.UUID) error {
	now := time.Now().UTC()
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"userId": userID.String()},
		bson.M{
			"$setOnInsert": bson.M{
				"userId":    userID.String(),
				"history":   []types.VideoItem{},
				"saved":     []types.VideoItem{},
				"createdAt": now,
			},
			"$set": bson.M{"updatedAt": now},
		},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (s *mongoStore) PushHistory(ctx context.Context, userID uuid.UUID, item types.VideoItem) (*types.VideoLists, error) {
	item = stamp(item)
	if err := s.ensure(ctx, userID); err != nil {
		return nil, err
	}
	filter := bson.M{"userId": userID.String()}
	// $pull and $push cannot target the same array in one update.
	if _, err := s.coll.UpdateOne(ctx, filter, bson.M{
		"$pull": bson.M{"history": bson.M{"videoId": item.VideoID}},
	}); err != nil {
		return nil, err
	}
	if _, err := s.coll.UpdateOne(ctx, filter, bson.M{
		"$push": bson.M{
			"history": bson.M{
				"$each":     []types.VideoItem{item},
				"$position": 0,
				"$slice":    video.MaxHistory,
			},
		},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *mongoStore) ClearHistory(ctx context.Context, userID uuid.UUID) (*types.VideoLists, error) {
	if err := s.ensure(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.coll.UpdateOne(ctx,
		bson.M{"userId": userID.String()},
		bson.M{"$set": bson.M{"history": []types.VideoItem{}, "updatedAt": time.Now().UTC()}},
	); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *mongoStore) AddSaved(ctx context.Context, userID uuid.UUID, item types.VideoItem) (*types.VideoLists, error) {
	item = stamp(item)
	if err := s.ensure(ctx, userID); err != nil {
		return nil, err
	}
	// No match means the video is already saved.
	if _, err := s.coll.UpdateOne(ctx,
		bson.M{"userId": userID.String(), "saved.videoId": bson.M{"$ne": item.VideoID}},
		bson.M{
			"$push": bson.M{"saved": item},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *mongoStore) RemoveSaved(ctx context.Context, userID uuid.UUID, videoID string) (*types.VideoLists, error) {
	if _, err := s.coll.UpdateOne(ctx,
		bson.M{"userId": userID.String()},
		bson.M{
			"$pull": bson.M{"saved": bson.M{"videoId": videoID}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}
