package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
)

// minFuzzyFragment keeps the substring fallback away from keys like "ac" that
// would match half the table.
const minFuzzyFragment = 4

type teamGateway interface {
	FindTeamByExternalRef(ctx context.Context, source, externalID string) (team.Team, bool, error)
	FindTeamsByNormalizedName(ctx context.Context, normalizedName string) ([]team.Team, error)
	SearchTeams(ctx context.Context, fragment string, limit int) ([]team.Team, error)
	CreateTeam(ctx context.Context, item team.Team, ref team.ExternalRef) (team.Team, error)
	LinkTeamRef(ctx context.Context, ref team.ExternalRef) error
	EnrichTeam(ctx context.Context, item team.Team) error
}

// TeamResolver maps a provider's team onto one canonical team, creating it on
// first sight.
type TeamResolver struct {
	store   teamGateway
	aliases *team.AliasTable
	logger  *logging.Logger
}

func NewTeamResolver(store teamGateway, aliases *team.AliasTable, logger *logging.Logger) *TeamResolver {
	if aliases == nil {
		aliases = team.DefaultAliases()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamResolver{
		store:   store,
		aliases: aliases,
		logger:  logger,
	}
}

// Resolve looks the team up by provider ref, then by alias-normalized name,
// then by a unique substring match, and creates it as a last resort.
func (r *TeamResolver) Resolve(ctx context.Context, ext ExternalTeam) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamResolver.Resolve")
	defer span.End()

	ext.Source = strings.TrimSpace(ext.Source)
	ext.ExternalID = strings.TrimSpace(ext.ExternalID)
	ext.Name = strings.TrimSpace(ext.Name)
	if ext.Source == "" || ext.ExternalID == "" {
		return team.Team{}, fmt.Errorf("%w: source and external id are required", ErrInvalidTeamPayload)
	}

	ref := team.ExternalRef{Source: ext.Source, ExternalID: team.TaggedID(ext.Source, ext.ExternalID)}
	candidate := r.candidateFrom(ext, ref.ExternalID)

	existing, found, err := r.store.FindTeamByExternalRef(ctx, ref.Source, ref.ExternalID)
	if err != nil {
		return team.Team{}, err
	}
	if found {
		return r.enrich(ctx, existing, candidate), nil
	}

	if candidate.NormalizedName == "" {
		return team.Team{}, fmt.Errorf("%w: name is required for external_id=%s", ErrInvalidTeamPayload, ref.ExternalID)
	}

	matches, err := r.store.FindTeamsByNormalizedName(ctx, candidate.NormalizedName)
	if err != nil {
		return team.Team{}, err
	}
	if len(matches) > 0 {
		return r.link(ctx, matches[0], ref, candidate)
	}

	if len(candidate.NormalizedName) >= minFuzzyFragment {
		fuzzy, err := r.store.SearchTeams(ctx, candidate.NormalizedName, 2)
		if err != nil {
			return team.Team{}, err
		}
		if len(fuzzy) == 1 {
			r.logger.WarnContext(ctx, "team resolved by substring match",
				"provider", ext.Source,
				"external_id", ref.ExternalID,
				"name", ext.Name,
				"team_id", fuzzy[0].ID,
				"team_name", fuzzy[0].Name,
			)
			return r.link(ctx, fuzzy[0], ref, candidate)
		}
	}

	created, err := r.store.CreateTeam(ctx, candidate, ref)
	if err == nil {
		r.logger.InfoContext(ctx, "team created",
			"provider", ext.Source,
			"external_id", ref.ExternalID,
			"team_id", created.ID,
			"name", created.Name,
		)
		return created, nil
	}
	if !errors.Is(err, ErrPersistenceConflict) {
		return team.Team{}, err
	}

	// Lost a creation race; the winner's row is the answer.
	existing, found, lookupErr := r.store.FindTeamByExternalRef(ctx, ref.Source, ref.ExternalID)
	if lookupErr != nil {
		return team.Team{}, lookupErr
	}
	if found {
		return existing, nil
	}
	matches, lookupErr = r.store.FindTeamsByNormalizedName(ctx, candidate.NormalizedName)
	if lookupErr != nil {
		return team.Team{}, lookupErr
	}
	if len(matches) > 0 {
		return r.link(ctx, matches[0], ref, candidate)
	}
	return team.Team{}, err
}

func (r *TeamResolver) candidateFrom(ext ExternalTeam, taggedID string) team.Team {
	name := r.aliases.Canonical(ext.Name)
	return team.Team{
		ExternalID:     taggedID,
		Source:         ext.Source,
		Name:           name,
		NormalizedName: team.NormalizeName(name),
		ShortName:      strings.TrimSpace(ext.ShortName),
		Code:           strings.TrimSpace(ext.Code),
		Country:        strings.TrimSpace(ext.Country),
		CountryCode:    strings.TrimSpace(ext.CountryCode),
		League:         strings.TrimSpace(ext.League),
		LogoURL:        strings.TrimSpace(ext.LogoURL),
		Website:        strings.TrimSpace(ext.Website),
		IsActive:       true,
	}
}

func (r *TeamResolver) link(ctx context.Context, existing team.Team, ref team.ExternalRef, candidate team.Team) (team.Team, error) {
	ref.TeamID = existing.ID
	if err := r.store.LinkTeamRef(ctx, ref); err != nil {
		return team.Team{}, err
	}
	return r.enrich(ctx, existing, candidate), nil
}

// enrich never fails resolution; a lost update is retried on the next sighting.
func (r *TeamResolver) enrich(ctx context.Context, existing, candidate team.Team) team.Team {
	enriched, changed := existing.Enrich(candidate)
	if !changed {
		return existing
	}
	if err := r.store.EnrichTeam(ctx, enriched); err != nil {
		r.logger.WarnContext(ctx, "team enrichment failed",
			"team_id", existing.ID,
			"error", err,
		)
		return existing
	}
	return enriched
}
