package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/riskibarqy/matchsync/internal/domain/team"
	teammock "github.com/riskibarqy/matchsync/internal/mocks/domain/team"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestTeamResolver_AliasesConvergeOnOneTeam(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := newTestPipeline(team.DefaultAliases())

	first, err := p.resolver.Resolve(ctx, fdTeam("65", "Manchester City FC"))
	if err != nil {
		t.Fatalf("resolve football-data team: %v", err)
	}
	second, err := p.resolver.Resolve(ctx, afTeam("50", "Man City"))
	if err != nil {
		t.Fatalf("resolve api-football team: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected one canonical team, got=%d and %d", first.ID, second.ID)
	}
	if first.ExternalID != "football-data:65" {
		t.Fatalf("expected first-seen tagged id, got=%s", first.ExternalID)
	}
	if first.Name != "Manchester City" {
		t.Fatalf("expected canonical display name, got=%s", first.Name)
	}
	if n := p.teams.RefCount(first.ID); n != 2 {
		t.Fatalf("expected two provider refs, got=%d", n)
	}

	again, err := p.resolver.Resolve(ctx, afTeam("50", "Manchester City"))
	if err != nil {
		t.Fatalf("resolve by ref: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected ref lookup to return the same team, got=%d", again.ID)
	}
	all, _ := p.teams.ListAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected one stored team, got=%d", len(all))
	}
}

func TestTeamResolver_EnrichesWithoutOverwriting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := newTestPipeline(team.DefaultAliases())

	created, err := p.resolver.Resolve(ctx, ExternalTeam{
		Source: "football-data", ExternalID: "57", Name: "Arsenal FC", Code: "ARS",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := p.resolver.Resolve(ctx, ExternalTeam{
		Source: "football-data", ExternalID: "57", Name: "Arsenal FC", Code: "XXX", Country: "England",
		LogoURL: "https://crests.example/57.png",
	})
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected same team, got=%d", updated.ID)
	}
	if updated.Code != "ARS" {
		t.Fatalf("expected populated code kept, got=%s", updated.Code)
	}
	stored, _, _ := p.teams.GetByID(ctx, created.ID)
	if stored.Country != "England" || stored.LogoURL == "" {
		t.Fatalf("expected empty fields filled, got=%+v", stored)
	}
}

func TestTeamResolver_SubstringFallbackNeedsUniqueCandidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	empty, err := team.ParseAliases(strings.NewReader(""))
	if err != nil {
		t.Fatalf("parse aliases: %v", err)
	}
	p := newTestPipeline(empty)

	wolves, err := p.resolver.Resolve(ctx, fdTeam("76", "Wolverhampton Wanderers FC"))
	if err != nil {
		t.Fatalf("create wolves: %v", err)
	}
	got, err := p.resolver.Resolve(ctx, afTeam("39", "Wolverhampton"))
	if err != nil {
		t.Fatalf("resolve by substring: %v", err)
	}
	if got.ID != wolves.ID {
		t.Fatalf("expected substring match to link, got=%d", got.ID)
	}

	if _, err := p.resolver.Resolve(ctx, fdTeam("1", "Athletic Club United")); err != nil {
		t.Fatalf("create first united: %v", err)
	}
	if _, err := p.resolver.Resolve(ctx, fdTeam("2", "Athletic Club City")); err != nil {
		t.Fatalf("create second club: %v", err)
	}
	ambiguous, err := p.resolver.Resolve(ctx, afTeam("3", "Athletic Club"))
	if err != nil {
		t.Fatalf("resolve ambiguous: %v", err)
	}
	all, _ := p.teams.ListAll(ctx)
	if len(all) != 4 {
		t.Fatalf("expected ambiguous name to create a new team, got=%d teams", len(all))
	}
	if ambiguous.ExternalID != "api-football:3" {
		t.Fatalf("expected new team, got=%s", ambiguous.ExternalID)
	}
}

func TestTeamResolver_SubstringFallbackNeedsWholeWords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	empty, err := team.ParseAliases(strings.NewReader(""))
	if err != nil {
		t.Fatalf("parse aliases: %v", err)
	}
	p := newTestPipeline(empty)

	internacional, err := p.resolver.Resolve(ctx, fdTeam("1783", "SC Internacional"))
	if err != nil {
		t.Fatalf("create internacional: %v", err)
	}
	inter, err := p.resolver.Resolve(ctx, afTeam("505", "Inter"))
	if err != nil {
		t.Fatalf("resolve inter: %v", err)
	}
	if inter.ID == internacional.ID {
		t.Fatalf("expected a partial word not to link to team_id=%d", internacional.ID)
	}
}

func TestTeamResolver_RejectsMissingIdentity(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(nil)
	_, err := p.resolver.Resolve(context.Background(), ExternalTeam{Source: "football-data", Name: "Arsenal"})
	if !errors.Is(err, ErrInvalidTeamPayload) {
		t.Fatalf("expected ErrInvalidTeamPayload, got %v", err)
	}
	_, err = p.resolver.Resolve(context.Background(), ExternalTeam{Source: "football-data", ExternalID: "57"})
	if !errors.Is(err, ErrInvalidTeamPayload) {
		t.Fatalf("expected ErrInvalidTeamPayload for nameless new team, got %v", err)
	}
}

func TestTeamResolver_CreationRaceReturnsWinnerUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := teammock.NewRepository(t)
	gateway := NewPersistenceGateway(GatewayRepositories{Teams: repo}, logging.NewNop())
	resolver := NewTeamResolver(gateway, team.DefaultAliases(), logging.NewNop())

	winner := team.Team{ID: 9, ExternalID: "football-data:57", Source: "football-data", Name: "Arsenal", NormalizedName: "arsenal"}

	repo.On("GetByExternalRef", ctx, "football-data", "football-data:57").
		Return(team.Team{}, false, nil).
		Once()
	repo.On("FindByNormalizedName", ctx, "arsenal").
		Return([]team.Team{}, nil).
		Once()
	repo.On("SearchByName", ctx, "arsenal", 2).
		Return([]team.Team{}, nil).
		Once()
	repo.On("Create", ctx, mock.AnythingOfType("team.Team"), team.ExternalRef{Source: "football-data", ExternalID: "football-data:57"}).
		Return(team.Team{}, team.ErrConflict).
		Once()
	repo.On("GetByExternalRef", ctx, "football-data", "football-data:57").
		Return(winner, true, nil).
		Once()

	got, err := resolver.Resolve(ctx, fdTeam("57", "Arsenal FC"))
	if err != nil {
		t.Fatalf("expected conflict to be absorbed, got %v", err)
	}
	if got.ID != winner.ID {
		t.Fatalf("expected winner id=%d, got=%d", winner.ID, got.ID)
	}
}
