package match

import (
	"context"
	"time"
)

// UpsertFailure is one record the store refused.
type UpsertFailure struct {
	ExternalID string
	Err        error
}

type UpsertResult struct {
	Stored   int
	Failures []UpsertFailure
}

// Repository exposes match persistence. UpsertMany keys on ExternalID and
// reports per-record failures instead of aborting the batch.
type Repository interface {
	GetByExternalID(ctx context.Context, externalID string) (Match, bool, error)
	FindByTeamsAndDate(ctx context.Context, homeTeamID, awayTeamID int64, day time.Time) (Match, bool, error)
	UpsertMany(ctx context.Context, items []Match) (UpsertResult, error)
	ListByStatusBetween(ctx context.Context, statuses []Status, from, to time.Time) ([]Match, error)
	ListPendingHighlights(ctx context.Context, limit int) ([]Match, error)
	MarkHighlightsProcessed(ctx context.Context, ids []int64) (int, error)
}
