package ide

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/bytesolver-backend/internal/data/repos/testutil"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
)

func TestIdeFileRepoPathConflict(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	files := NewIdeFileRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "ide-files@example.com")
	p := testutil.SeedProject(t, ctx, tx, u.ID, "python")

	a, err := files.Create(dbc, &types.IdeFile{ProjectID: p.ID, UserID: u.ID, Name: "main.py", Path: "/main.py", Language: "python"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := files.Create(dbc, &types.IdeFile{ProjectID: p.ID, UserID: u.ID, Name: "main.py", Path: "/main.py", Language: "python"}); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("Create duplicate: expected ErrConflict, got %v", err)
	}
	// postgres aborts the transaction after a failed insert.
	if testutil.IsPostgres() {
		return
	}

	b, err := files.Create(dbc, &types.IdeFile{ProjectID: p.ID, UserID: u.ID, Name: "util.py", Path: "/util.py", Language: "python"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := files.UpdateFields(dbc, p.ID, b.ID, map[string]any{"name": "main.py", "path": "/main.py"}); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("UpdateFields rename: expected ErrConflict, got %v", err)
	}

	list, err := files.ListByProject(dbc, p.ID)
	if err != nil || len(list) != 2 || list[0].ID != a.ID {
		t.Fatalf("ListByProject: err=%v len=%d", err, len(list))
	}
}

func TestIdeProjectDeleteCascadesFiles(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	projects := NewIdeProjectRepo(db, testutil.Logger(t))
	files := NewIdeFileRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "ide-projects@example.com")
	other := testutil.SeedUser(t, ctx, tx, "ide-projects-other@example.com")

	p, err := projects.Create(dbc, &types.IdeProject{UserID: u.ID, Name: "demo", Language: "go"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f, err := files.Create(dbc, &types.IdeFile{ProjectID: p.ID, UserID: u.ID, Name: "main.go", Path: "/main.go", Language: "go"})
	if err != nil {
		t.Fatalf("Create file: %v", err)
	}

	if err := projects.Delete(dbc, other.ID, p.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Delete (other): expected ErrNotFound, got %v", err)
	}
	if err := projects.Delete(dbc, u.ID, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := files.GetInProject(dbc, p.ID, f.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("GetInProject after delete: expected ErrNotFound, got %v", err)
	}
}
