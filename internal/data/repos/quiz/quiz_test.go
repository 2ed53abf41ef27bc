package quiz

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/bytesolver-backend/internal/data/repos/testutil"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
)

func TestQuizAndAttemptRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	quizzes := NewQuizRepo(db, testutil.Logger(t))
	attempts := NewQuizAttemptRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "quizrepo@example.com")
	other := testutil.SeedUser(t, ctx, tx, "quizrepo-other@example.com")
	q := testutil.SeedQuiz(t, ctx, tx, u.ID, `[{"type":"mcq","question":"q","options":["a","b","c","d"],"correctAnswerIndex":1}]`)

	if _, err := quizzes.GetForUser(dbc, u.ID, q.ID); err != nil {
		t.Fatalf("GetForUser: %v", err)
	}
	if _, err := quizzes.GetForUser(dbc, other.ID, q.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("GetForUser (other): expected ErrNotFound, got %v", err)
	}

	a := &types.QuizAttempt{
		QuizID:     q.ID,
		UserID:     u.ID,
		Answers:    datatypes.JSON([]byte(`[]`)),
		Score:      1,
		Total:      1,
		Correct:    1,
		Percentage: 100,
	}
	if _, err := attempts.Create(dbc, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rows, err := attempts.ListByUser(dbc, u.ID, 10); err != nil || len(rows) != 1 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(rows))
	}
	if rows, err := attempts.ListByQuiz(dbc, other.ID, q.ID); err != nil || len(rows) != 0 {
		t.Fatalf("ListByQuiz (other): err=%v len=%d", err, len(rows))
	}
}
