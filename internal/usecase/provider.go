package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/competition"
	"github.com/riskibarqy/matchsync/internal/domain/rawdata"
)

// ExternalTeam is a provider's view of a club. ExternalID is the provider-native id.
type ExternalTeam struct {
	Source      string
	ExternalID  string
	Name        string
	ShortName   string
	Code        string
	Country     string
	CountryCode string
	League      string
	LogoURL     string
	Website     string
}

// ExternalMatch is a provider's view of a fixture before normalization.
// KickoffAt is zero when RawKickoff could not be parsed.
type ExternalMatch struct {
	Source          string
	ExternalID      string
	CompetitionCode string
	CompetitionName string
	Home            ExternalTeam
	Away            ExternalTeam
	RawKickoff      string
	KickoffAt       time.Time
	ProviderStatus  string
	HomeScore       *int
	AwayScore       *int
	Venue           string
	Referee         string
	Attendance      *int
	Matchday        *int
	Season          string
}

// ProviderBatch is one provider response: parsed matches in provider order plus
// the raw payloads for the archive.
type ProviderBatch struct {
	Matches  []ExternalMatch
	Payloads []rawdata.Payload
}

// MatchProvider is implemented by each upstream client. Every call goes
// through the provider's own request budget.
type MatchProvider interface {
	Source() string
	FetchCompetitionMatches(ctx context.Context, competitionCode string, from, to time.Time) (ProviderBatch, error)
	FetchMatchesByDate(ctx context.Context, day time.Time) (ProviderBatch, error)
	FetchMatch(ctx context.Context, nativeID string) (ProviderBatch, error)
}

// CompetitionBatch is one catalogue response.
type CompetitionBatch struct {
	Competitions []competition.Competition
	Payloads     []rawdata.Payload
}

// CompetitionProvider lists the competitions an upstream covers.
type CompetitionProvider interface {
	Source() string
	FetchCompetitions(ctx context.Context) (CompetitionBatch, error)
}
