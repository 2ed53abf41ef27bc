package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/bytesolver-backend/internal/data/repos/testutil"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
)

func TestChatSessionRepoScoping(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	sessions := NewChatSessionRepo(db, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "chat-owner@example.com")
	other := testutil.SeedUser(t, ctx, tx, "chat-other@example.com")
	s := testutil.SeedSession(t, ctx, tx, owner.ID, types.ChatModeOpen)

	if _, err := sessions.GetForUser(dbc, owner.ID, s.ID); err != nil {
		t.Fatalf("GetForUser (owner): %v", err)
	}
	if _, err := sessions.GetForUser(dbc, other.ID, s.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("GetForUser (other): expected ErrNotFound, got %v", err)
	}
	if err := sessions.UpdateFields(dbc, other.ID, s.ID, map[string]any{"title": "x"}); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("UpdateFields (other): expected ErrNotFound, got %v", err)
	}
	if err := sessions.Delete(dbc, other.ID, s.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Delete (other): expected ErrNotFound, got %v", err)
	}

	list, err := sessions.ListByUser(dbc, other.ID, 10)
	if err != nil || len(list) != 0 {
		t.Fatalf("ListByUser (other): err=%v len=%d", err, len(list))
	}
}

func TestChatMessagesOrderAndCascade(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	sessions := NewChatSessionRepo(db, testutil.Logger(t))
	messages := NewChatMessageRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "chat-order@example.com")
	s := testutil.SeedSession(t, ctx, tx, u.ID, types.ChatModeOpen)

	base := time.Now().UTC().Add(-time.Minute)
	testutil.SeedMessage(t, ctx, tx, s, types.ChatRoleAsst, "second", base.Add(2*time.Second))
	testutil.SeedMessage(t, ctx, tx, s, types.ChatRoleUser, "first", base)

	got, err := messages.ListBySession(dbc, s.ID)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(got) != 2 || got[0].Content != "first" || got[1].Content != "second" {
		t.Fatalf("ListBySession: unexpected order: %+v", got)
	}

	if err := sessions.Delete(dbc, u.ID, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	n, err := messages.CountBySession(dbc, s.ID)
	if err != nil || n != 0 {
		t.Fatalf("CountBySession after delete: err=%v n=%d", err, n)
	}
	if _, err := sessions.GetForUser(dbc, u.ID, s.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("GetForUser after delete: expected ErrNotFound, got %v", err)
	}
}
