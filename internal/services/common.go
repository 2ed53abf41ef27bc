package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/bytesolver-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
)

// Clock is injected where day boundaries matter.
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }

func requireUser(ctx context.Context) (uuid.UUID, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("AUTH_REQUIRED", "Authentication required")
	}
	return userID, nil
}

// notFound turns the repo sentinel into a 404 naming what was missing.
func notFound(err error, what string) error {
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return apierr.NotFound(what)
	}
	return err
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
