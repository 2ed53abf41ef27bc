package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/bytesolver-backend/internal/data/repos"
	"github.com/yungbote/bytesolver-backend/internal/data/repos/doubt"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
)

const (
	maxDoubtQuestion = 500
	defaultDoubtList = 20
	maxDoubtList     = 100
)

type DoubtService interface {
	// Record upserts the normalised question. topic may be empty, in which
	// case the keyword classifier picks one.
	Record(ctx context.Context, userID uuid.UUID, question, topic string) error
	List(ctx context.Context, sort string, limit int) ([]*types.Doubt, error)
}

type doubtService struct {
	log  *logger.Logger
	repo repos.DoubtRepo
	now  Clock
}

func NewDoubtService(log *logger.Logger, repo repos.DoubtRepo) DoubtService {
	return &doubtService{log: log.With("service", "DoubtService"), repo: repo, now: systemClock}
}

var spaceRe = regexp.MustCompile(`\s+`)

// NormalizeQuestion trims, collapses whitespace, lower-cases and caps length.
func NormalizeQuestion(q string) string {
	q = spaceRe.ReplaceAllString(strings.TrimSpace(q), " ")
	return truncateRunes(strings.ToLower(q), maxDoubtQuestion)
}

func (ds *doubtService) Record(ctx context.Context, userID uuid.UUID, question, topic string) error {
	norm := NormalizeQuestion(question)
	if norm == "" {
		return nil
	}
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		topic = ClassifyTopic(norm)
	}
	now := ds.now().UTC()
	return ds.repo.Upsert(dbctx.New(ctx), &types.Doubt{
		ID:          uuid.New(),
		UserID:      userID,
		Question:    norm,
		DisplayText: truncateRunes(strings.TrimSpace(question), maxDoubtQuestion),
		Topic:       topic,
		Frequency:   1,
		LastAskedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (ds *doubtService) List(ctx context.Context, sort string, limit int) ([]*types.Doubt, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	switch sort {
	case "":
		sort = doubt.SortRecent
	case doubt.SortRecent, doubt.SortFrequent:
	default:
		return nil, apierr.Validation("sort must be recent or frequent")
	}
	if limit <= 0 {
		limit = defaultDoubtList
	}
	return ds.repo.List(dbctx.New(ctx), userID, sort, clampInt(limit, 1, maxDoubtList))
}
