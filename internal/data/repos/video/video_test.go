package video

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yungbote/bytesolver-backend/internal/data/repos/testutil"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/domain/video"
)

func TestPrependHistoryDedupesAndCaps(t *testing.T) {
	var list []types.VideoItem
	for i := 0; i < video.MaxHistory+20; i++ {
		list = prependHistory(list, types.VideoItem{VideoID: fmt.Sprintf("v%d", i)})
	}
	if len(list) != video.MaxHistory {
		t.Fatalf("expected cap %d, got %d", video.MaxHistory, len(list))
	}
	list = prependHistory(list, types.VideoItem{VideoID: "v50"})
	if list[0].VideoID != "v50" {
		t.Fatalf("expected v50 first, got %s", list[0].VideoID)
	}
	seen := 0
	for _, it := range list {
		if it.VideoID == "v50" {
			seen++
		}
	}
	if seen != 1 {
		t.Fatalf("expected v50 once, saw %d", seen)
	}
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	userID := uuid.New()

	lists, err := store.Get(ctx, userID)
	if err != nil || len(lists.History) != 0 || len(lists.Saved) != 0 {
		t.Fatalf("Get (empty): err=%v lists=%+v", err, lists)
	}

	for _, id := range []string{"a", "b", "a"} {
		if _, err := store.PushHistory(ctx, userID, types.VideoItem{VideoID: id, Title: id, At: time.Now().UTC()}); err != nil {
			t.Fatalf("PushHistory: %v", err)
		}
	}
	lists, err = store.Get(ctx, userID)
	if err != nil || len(lists.History) != 2 || lists.History[0].VideoID != "a" {
		t.Fatalf("history: err=%v got=%+v", err, lists.History)
	}

	for _, id := range []string{"x", "x", "y"} {
		if _, err := store.AddSaved(ctx, userID, types.VideoItem{VideoID: id}); err != nil {
			t.Fatalf("AddSaved: %v", err)
		}
	}
	lists, err = store.RemoveSaved(ctx, userID, "x")
	if err != nil || len(lists.Saved) != 1 || lists.Saved[0].VideoID != "y" {
		t.Fatalf("RemoveSaved: err=%v saved=%+v", err, lists.Saved)
	}

	lists, err = store.ClearHistory(ctx, userID)
	if err != nil || len(lists.History) != 0 || len(lists.Saved) != 1 {
		t.Fatalf("ClearHistory: err=%v lists=%+v", err, lists)
	}
}

func TestGormStore(t *testing.T) {
	exerciseStore(t, NewGormStore(testutil.FreshDB(t), testutil.Logger(t)))
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	db := client.Database("bytesolver_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	store, err := NewMongoStore(ctx, db, testutil.Logger(t))
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	exerciseStore(t, store)
}
