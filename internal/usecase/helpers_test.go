package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
)

var kickoff = time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

type testPipeline struct {
	teams      *memory.TeamRepository
	matches    *memory.MatchRepository
	raw        *memory.RawDataRepository
	comps      *memory.CompetitionRepository
	gateway    *PersistenceGateway
	resolver   *TeamResolver
	reconciler *MatchReconciler
}

func newTestPipeline(aliases *team.AliasTable) testPipeline {
	teams := memory.NewTeamRepository(nil)
	matches := memory.NewMatchRepository(teams)
	raw := memory.NewRawDataRepository()
	competitions := memory.NewCompetitionRepository()
	logger := logging.NewNop()

	gateway := NewPersistenceGateway(GatewayRepositories{
		Teams:        teams,
		Matches:      matches,
		Competitions: competitions,
		Raw:          raw,
	}, logger)
	resolver := NewTeamResolver(gateway, aliases, logger)
	reconciler := NewMatchReconciler(resolver, gateway, MatchReconcilerConfig{
		Priorities: map[string]int{
			match.SourceFootballData: 1,
			match.SourceAPIFootball:  2,
		},
	}, logger)

	return testPipeline{
		teams:      teams,
		matches:    matches,
		raw:        raw,
		comps:      competitions,
		gateway:    gateway,
		resolver:   resolver,
		reconciler: reconciler,
	}
}

func fdTeam(id, name string) ExternalTeam {
	return ExternalTeam{Source: match.SourceFootballData, ExternalID: id, Name: name}
}

func afTeam(id, name string) ExternalTeam {
	return ExternalTeam{Source: match.SourceAPIFootball, ExternalID: id, Name: name}
}

func extMatch(source, id string, home, away ExternalTeam, at time.Time, status string, homeScore, awayScore *int) ExternalMatch {
	return ExternalMatch{
		Source:          source,
		ExternalID:      id,
		CompetitionCode: "PL",
		CompetitionName: "Premier League",
		Home:            home,
		Away:            away,
		RawKickoff:      at.Format(time.RFC3339),
		KickoffAt:       at,
		ProviderStatus:  status,
		HomeScore:       homeScore,
		AwayScore:       awayScore,
	}
}

// fakeProvider serves canned batches keyed by "competition:CODE", "day:YYYY-MM-DD"
// and "match:ID".
type fakeProvider struct {
	source  string
	batches map[string]ProviderBatch
	errs    map[string]error

	mu    sync.Mutex
	calls []string
}

func newFakeProvider(source string) *fakeProvider {
	return &fakeProvider{
		source:  source,
		batches: make(map[string]ProviderBatch),
		errs:    make(map[string]error),
	}
}

func (p *fakeProvider) Source() string { return p.source }

func (p *fakeProvider) FetchCompetitionMatches(_ context.Context, code string, _, _ time.Time) (ProviderBatch, error) {
	return p.serve("competition:" + code)
}

func (p *fakeProvider) FetchMatchesByDate(_ context.Context, day time.Time) (ProviderBatch, error) {
	return p.serve("day:" + day.Format(time.DateOnly))
}

func (p *fakeProvider) FetchMatch(_ context.Context, nativeID string) (ProviderBatch, error) {
	return p.serve("match:" + nativeID)
}

func (p *fakeProvider) serve(key string) (ProviderBatch, error) {
	p.mu.Lock()
	p.calls = append(p.calls, key)
	p.mu.Unlock()

	if err, ok := p.errs[key]; ok {
		return ProviderBatch{}, err
	}
	return p.batches[key], nil
}

func (p *fakeProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// fakeCatalogue is a fakeProvider that also publishes a competition catalogue.
type fakeCatalogue struct {
	*fakeProvider
	catalogue CompetitionBatch
	err       error
}

func (p *fakeCatalogue) FetchCompetitions(context.Context) (CompetitionBatch, error) {
	p.mu.Lock()
	p.calls = append(p.calls, "competitions")
	p.mu.Unlock()
	return p.catalogue, p.err
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("run-%d", g.n), nil
}
