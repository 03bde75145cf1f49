package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/matchsync/internal/domain/match"
)

const (
	defaultHighlightLimit = 20
	maxHighlightLimit     = 100
)

// MatchQueryService serves the highlight bookkeeping reads and writes.
type MatchQueryService struct {
	matches match.Repository
}

func NewMatchQueryService(matches match.Repository) *MatchQueryService {
	return &MatchQueryService{matches: matches}
}

// ListPendingHighlights returns finished matches with a final score that were
// not processed yet, newest first.
func (s *MatchQueryService) ListPendingHighlights(ctx context.Context, limit int) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchQueryService.ListPendingHighlights")
	defer span.End()

	switch {
	case limit <= 0:
		limit = defaultHighlightLimit
	case limit > maxHighlightLimit:
		limit = maxHighlightLimit
	}

	items, err := s.matches.ListPendingHighlights(ctx, limit)
	if err != nil {
		return nil, mapStoreError("list pending highlights", err)
	}
	return items, nil
}

func (s *MatchQueryService) MarkHighlightsProcessed(ctx context.Context, ids []int64) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchQueryService.MarkHighlightsProcessed")
	defer span.End()

	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: match ids are required", ErrInvalidInput)
	}
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return 0, fmt.Errorf("%w: match id must be positive, got=%d", ErrInvalidInput, id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	n, err := s.matches.MarkHighlightsProcessed(ctx, unique)
	if err != nil {
		return 0, mapStoreError("mark highlights processed", err)
	}
	return n, nil
}
