package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/competition"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/rawdata"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
)

// UpsertFailure is one match the store refused, with the reason bucket used in
// run summaries.
type UpsertFailure struct {
	ExternalID string
	Reason     string
	Err        error
}

type UpsertReport struct {
	Stored   int
	Failures []UpsertFailure
}

// PersistenceGateway is the only path from the pipeline to storage. It maps
// repository errors onto ErrPersistenceConflict and ErrPersistenceFailure.
type PersistenceGateway struct {
	teams        team.Repository
	matches      match.Repository
	competitions competition.Repository
	raw          rawdata.Repository
	logger       *logging.Logger
}

// GatewayRepositories groups the stores behind the gateway. Competitions and
// Raw may be nil.
type GatewayRepositories struct {
	Teams        team.Repository
	Matches      match.Repository
	Competitions competition.Repository
	Raw          rawdata.Repository
}

func NewPersistenceGateway(repos GatewayRepositories, logger *logging.Logger) *PersistenceGateway {
	if logger == nil {
		logger = logging.Default()
	}
	return &PersistenceGateway{
		teams:        repos.Teams,
		matches:      repos.Matches,
		competitions: repos.Competitions,
		raw:          repos.Raw,
		logger:       logger,
	}
}

func (g *PersistenceGateway) FindTeamByExternalRef(ctx context.Context, source, externalID string) (team.Team, bool, error) {
	item, found, err := g.teams.GetByExternalRef(ctx, source, externalID)
	if err != nil {
		return team.Team{}, false, mapStoreError("find team by ref", err)
	}
	return item, found, nil
}

func (g *PersistenceGateway) FindTeamsByNormalizedName(ctx context.Context, normalizedName string) ([]team.Team, error) {
	items, err := g.teams.FindByNormalizedName(ctx, normalizedName)
	if err != nil {
		return nil, mapStoreError("find teams by name", err)
	}
	return items, nil
}

func (g *PersistenceGateway) SearchTeams(ctx context.Context, fragment string, limit int) ([]team.Team, error) {
	items, err := g.teams.SearchByName(ctx, fragment, limit)
	if err != nil {
		return nil, mapStoreError("search teams", err)
	}
	return items, nil
}

func (g *PersistenceGateway) ListTeams(ctx context.Context) ([]team.Team, error) {
	items, err := g.teams.ListAll(ctx)
	if err != nil {
		return nil, mapStoreError("list teams", err)
	}
	return items, nil
}

// CreateTeam inserts a team together with its first provider ref. A duplicate
// surfaces as ErrPersistenceConflict.
func (g *PersistenceGateway) CreateTeam(ctx context.Context, item team.Team, ref team.ExternalRef) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceGateway.CreateTeam")
	defer span.End()

	if err := item.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidTeamPayload, err)
	}
	created, err := g.teams.Create(ctx, item, ref)
	if err != nil {
		return team.Team{}, mapStoreError("create team", err)
	}
	return created, nil
}

func (g *PersistenceGateway) LinkTeamRef(ctx context.Context, ref team.ExternalRef) error {
	if err := g.teams.LinkExternalRef(ctx, ref); err != nil {
		return mapStoreError("link team ref", err)
	}
	return nil
}

func (g *PersistenceGateway) EnrichTeam(ctx context.Context, item team.Team) error {
	if err := g.teams.UpdateDetails(ctx, item); err != nil {
		return mapStoreError("enrich team", err)
	}
	return nil
}

// UpsertTeam stores item keyed by its external id. An existing team only has
// its empty fields filled.
func (g *PersistenceGateway) UpsertTeam(ctx context.Context, item team.Team) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceGateway.UpsertTeam")
	defer span.End()

	ref := team.ExternalRef{Source: item.Source, ExternalID: item.ExternalID}
	existing, found, err := g.FindTeamByExternalRef(ctx, ref.Source, ref.ExternalID)
	if err != nil {
		return 0, err
	}
	if found {
		if enriched, changed := existing.Enrich(item); changed {
			if err := g.EnrichTeam(ctx, enriched); err != nil {
				return 0, err
			}
		}
		return existing.ID, nil
	}

	created, err := g.CreateTeam(ctx, item, ref)
	if err == nil {
		return created.ID, nil
	}
	if !errors.Is(err, ErrPersistenceConflict) {
		return 0, err
	}
	existing, found, lookupErr := g.FindTeamByExternalRef(ctx, ref.Source, ref.ExternalID)
	if lookupErr != nil {
		return 0, lookupErr
	}
	if !found {
		return 0, err
	}
	return existing.ID, nil
}

func (g *PersistenceGateway) FindMatchByExternalID(ctx context.Context, externalID string) (match.Match, bool, error) {
	item, found, err := g.matches.GetByExternalID(ctx, externalID)
	if err != nil {
		return match.Match{}, false, mapStoreError("find match by external id", err)
	}
	return item, found, nil
}

func (g *PersistenceGateway) FindMatchByTeamsAndDate(ctx context.Context, homeTeamID, awayTeamID int64, day time.Time) (match.Match, bool, error) {
	item, found, err := g.matches.FindByTeamsAndDate(ctx, homeTeamID, awayTeamID, day)
	if err != nil {
		return match.Match{}, false, mapStoreError("find match by teams and date", err)
	}
	return item, found, nil
}

func (g *PersistenceGateway) ListMatchesByStatusBetween(ctx context.Context, statuses []match.Status, from, to time.Time) ([]match.Match, error) {
	items, err := g.matches.ListByStatusBetween(ctx, statuses, from, to)
	if err != nil {
		return nil, mapStoreError("list matches by status", err)
	}
	return items, nil
}

// UpsertMatches writes items keyed by external id. Per-record failures are
// reported, never dropped; only a failure of the whole batch returns an error.
func (g *PersistenceGateway) UpsertMatches(ctx context.Context, items []match.Match) (UpsertReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceGateway.UpsertMatches")
	defer span.End()

	var report UpsertReport
	if len(items) == 0 {
		return report, nil
	}

	result, err := g.matches.UpsertMany(ctx, items)
	if err != nil {
		return report, mapStoreError("upsert matches", err)
	}

	report.Stored = result.Stored
	for _, failure := range result.Failures {
		mapped := mapStoreError("upsert match", failure.Err)
		report.Failures = append(report.Failures, UpsertFailure{
			ExternalID: failure.ExternalID,
			Reason:     FailureReason(mapped),
			Err:        mapped,
		})
	}
	return report, nil
}

// UpsertCompetitions writes the catalogue keyed by code and returns how many
// rows were written.
func (g *PersistenceGateway) UpsertCompetitions(ctx context.Context, items []competition.Competition) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceGateway.UpsertCompetitions")
	defer span.End()

	if len(items) == 0 {
		return 0, nil
	}
	if g.competitions == nil {
		return 0, fmt.Errorf("%w: competition store not configured", ErrDependencyUnavailable)
	}
	stored, err := g.competitions.UpsertMany(ctx, items)
	if err != nil {
		return 0, mapStoreError("upsert competitions", err)
	}
	return stored, nil
}

func (g *PersistenceGateway) ListCompetitions(ctx context.Context) ([]competition.Competition, error) {
	if g.competitions == nil {
		return nil, fmt.Errorf("%w: competition store not configured", ErrDependencyUnavailable)
	}
	items, err := g.competitions.List(ctx)
	if err != nil {
		return nil, mapStoreError("list competitions", err)
	}
	return items, nil
}

// ArchivePayloads is best effort. Failures are logged and swallowed.
func (g *PersistenceGateway) ArchivePayloads(ctx context.Context, items []rawdata.Payload) {
	if g.raw == nil || len(items) == 0 {
		return
	}
	if err := g.raw.UpsertMany(ctx, items); err != nil {
		g.logger.WarnContext(ctx, "archive raw payloads failed",
			"count", len(items),
			"source", strings.TrimSpace(items[0].Source),
			"error", err,
		)
	}
}

func mapStoreError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPersistenceConflict), errors.Is(err, ErrPersistenceFailure):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, team.ErrConflict), errors.Is(err, match.ErrConflict):
		return fmt.Errorf("%w: %s: %w", ErrPersistenceConflict, op, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrPersistenceFailure, op, err)
	}
}
