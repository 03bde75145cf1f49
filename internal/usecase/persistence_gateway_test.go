package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/matchsync/internal/domain/competition"
	"github.com/riskibarqy/matchsync/internal/domain/rawdata"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	competitionmock "github.com/riskibarqy/matchsync/internal/mocks/domain/competition"
	rawdatamock "github.com/riskibarqy/matchsync/internal/mocks/domain/rawdata"
	teammock "github.com/riskibarqy/matchsync/internal/mocks/domain/team"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMapStoreError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		want   error
		reason string
	}{
		{name: "team conflict", err: team.ErrConflict, want: ErrPersistenceConflict, reason: "persistence_conflict"},
		{name: "driver failure", err: errors.New("connection refused"), want: ErrPersistenceFailure, reason: "persistence_failure"},
		{name: "deadline", err: context.DeadlineExceeded, want: context.DeadlineExceeded, reason: "timeout"},
		{name: "already mapped", err: ErrPersistenceConflict, want: ErrPersistenceConflict, reason: "persistence_conflict"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := mapStoreError("op", tc.err)
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got=%v", tc.want, got)
			}
			if reason := FailureReason(got); reason != tc.reason {
				t.Fatalf("expected reason %s, got=%s", tc.reason, reason)
			}
		})
	}
}

func TestPersistenceGateway_CreateTeamRejectsInvalid(t *testing.T) {
	t.Parallel()

	repo := teammock.NewRepository(t)
	g := NewPersistenceGateway(GatewayRepositories{Teams: repo}, logging.NewNop())

	_, err := g.CreateTeam(context.Background(), team.Team{Source: "football-data"}, team.ExternalRef{})
	assert.ErrorIs(t, err, ErrInvalidTeamPayload)
}

func TestPersistenceGateway_UpsertTeamLosesCreateRace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	item := team.Team{
		ExternalID:     "football-data:57",
		Source:         "football-data",
		Name:           "Arsenal",
		NormalizedName: "arsenal",
	}
	winner := item
	winner.ID = 11

	repo := teammock.NewRepository(t)
	repo.On("GetByExternalRef", mock.Anything, "football-data", "football-data:57").Return(team.Team{}, false, nil).Once()
	repo.On("Create", mock.Anything, item, mock.AnythingOfType("team.ExternalRef")).Return(team.Team{}, team.ErrConflict).Once()
	repo.On("GetByExternalRef", mock.Anything, "football-data", "football-data:57").Return(winner, true, nil).Once()

	id, err := NewPersistenceGateway(GatewayRepositories{Teams: repo}, logging.NewNop()).UpsertTeam(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestPersistenceGateway_UpsertTeamFillsEmptyFields(t *testing.T) {
	t.Parallel()

	existing := team.Team{ID: 3, ExternalID: "football-data:57", Source: "football-data", Name: "Arsenal", NormalizedName: "arsenal", Code: "ARS"}
	incoming := existing
	incoming.ID = 0
	incoming.Code = "AFC"
	incoming.Country = "England"

	repo := teammock.NewRepository(t)
	repo.On("GetByExternalRef", mock.Anything, "football-data", "football-data:57").Return(existing, true, nil).Once()
	repo.On("UpdateDetails", mock.Anything, mock.MatchedBy(func(item team.Team) bool {
		return item.ID == 3 && item.Code == "ARS" && item.Country == "England"
	})).Return(nil).Once()

	id, err := NewPersistenceGateway(GatewayRepositories{Teams: repo}, logging.NewNop()).UpsertTeam(context.Background(), incoming)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
}

func TestPersistenceGateway_ArchiveFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	raw := rawdatamock.NewRepository(t)
	raw.On("UpsertMany", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	g := NewPersistenceGateway(GatewayRepositories{Raw: raw}, logging.NewNop())
	g.ArchivePayloads(context.Background(), []rawdata.Payload{{Source: "football-data", EntityType: rawdata.EntityMatch, EntityKey: "1"}})
	g.ArchivePayloads(context.Background(), nil)
}

func TestPersistenceGateway_UpsertCompetitions(t *testing.T) {
	t.Parallel()

	items := []competition.Competition{{Code: "PL", ExternalID: "football-data:2021", Source: "football-data", Name: "Premier League"}}

	t.Run("without store", func(t *testing.T) {
		g := NewPersistenceGateway(GatewayRepositories{}, logging.NewNop())
		_, err := g.UpsertCompetitions(context.Background(), items)
		assert.ErrorIs(t, err, ErrDependencyUnavailable)

		stored, err := g.UpsertCompetitions(context.Background(), nil)
		require.NoError(t, err)
		assert.Zero(t, stored)
	})

	t.Run("store failure is mapped", func(t *testing.T) {
		repo := competitionmock.NewRepository(t)
		repo.On("UpsertMany", mock.Anything, items).Return(0, errors.New("connection refused")).Once()
		g := NewPersistenceGateway(GatewayRepositories{Competitions: repo}, logging.NewNop())

		_, err := g.UpsertCompetitions(context.Background(), items)
		assert.ErrorIs(t, err, ErrPersistenceFailure)
	})

	t.Run("stored count passes through", func(t *testing.T) {
		repo := competitionmock.NewRepository(t)
		repo.On("UpsertMany", mock.Anything, items).Return(1, nil).Once()
		g := NewPersistenceGateway(GatewayRepositories{Competitions: repo}, logging.NewNop())

		stored, err := g.UpsertCompetitions(context.Background(), items)
		require.NoError(t, err)
		assert.Equal(t, 1, stored)
	})
}
