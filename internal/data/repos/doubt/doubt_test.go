package doubt

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/bytesolver-backend/internal/data/repos/testutil"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
)

func TestDoubtRepoUpsertCountsFrequency(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewDoubtRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "doubt-repo@example.com")

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		err := repo.Upsert(dbc, &types.Doubt{
			UserID:      u.ID,
			Question:    "what is inertia?",
			DisplayText: "What is inertia?",
			Topic:       "physics",
			LastAskedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	if err := repo.Upsert(dbc, &types.Doubt{UserID: u.ID, Question: "define mole", Topic: "chemistry"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	n, err := repo.Count(dbc, u.ID)
	if err != nil || n != 2 {
		t.Fatalf("Count: n=%d err=%v", n, err)
	}

	frequent, err := repo.List(dbc, u.ID, SortFrequent, 10)
	if err != nil || len(frequent) != 2 {
		t.Fatalf("List: err=%v len=%d", err, len(frequent))
	}
	if frequent[0].Question != "what is inertia?" || frequent[0].Frequency != 3 {
		t.Fatalf("unexpected top doubt: %+v", frequent[0])
	}

	recent, err := repo.List(dbc, u.ID, SortRecent, 10)
	if err != nil || recent[0].Question != "define mole" {
		t.Fatalf("List recent: err=%v first=%+v", err, recent[0])
	}

	topics, err := repo.TopicCounts(dbc, u.ID)
	if err != nil || len(topics) != 2 || topics[0].Topic != "physics" || topics[0].Count != 3 {
		t.Fatalf("TopicCounts: err=%v got=%+v", err, topics)
	}
}
