package match

import (
	"errors"
	"strings"
	"time"
)

const (
	SourceFootballData = "football-data"
	SourceAPIFootball  = "api-football"
)

var (
	ErrMissingTeamReference = errors.New("match team reference does not exist")
	ErrConflict             = errors.New("match already exists")
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
	StatusPostponed Status = "postponed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusLive, StatusFinished, StatusPostponed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal statuses never move again once stored.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusPostponed || s == StatusCancelled
}

// Match is the canonical record for one real-world fixture. ExternalID and
// Source come from the provider that first stored it and never change.
// OwnerExternalID is the tagged id from the highest-ranked provider that has
// reported the fixture so far.
type Match struct {
	ID                 int64
	ExternalID         string
	Source             string
	OwnerExternalID    string
	HomeTeamID         int64
	AwayTeamID         int64
	MatchDate          time.Time
	Status             Status
	HomeScore          *int
	AwayScore          *int
	CompetitionID      string
	CompetitionName    string
	Venue              string
	Referee            string
	Attendance         *int
	Matchday           *int
	Season             string
	HighlightProcessed bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ExternalID tags a provider-native id with its source, e.g. "api-football:1035037".
func ExternalID(source, nativeID string) string {
	return strings.TrimSpace(source) + ":" + strings.TrimSpace(nativeID)
}

// SplitExternalID is the inverse of ExternalID.
func SplitExternalID(externalID string) (source, nativeID string, ok bool) {
	source, nativeID, ok = strings.Cut(strings.TrimSpace(externalID), ":")
	if !ok || source == "" || nativeID == "" {
		return "", "", false
	}
	return source, nativeID, true
}

// MergeDay is the calendar date of kickoff in UTC used by the cross-provider key.
func MergeDay(kickoff time.Time) time.Time {
	utc := kickoff.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// Owner is the provider whose values win conflicting fields.
func (m Match) Owner() string {
	if source, _, ok := SplitExternalID(m.OwnerExternalID); ok {
		return source
	}
	return m.Source
}

// OwnerID is the tagged id to re-fetch the fixture from its owner.
func (m Match) OwnerID() string {
	if _, _, ok := SplitExternalID(m.OwnerExternalID); ok {
		return strings.TrimSpace(m.OwnerExternalID)
	}
	return m.ExternalID
}

// HasFinalScore reports whether both scores are present.
func (m Match) HasFinalScore() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// Locked is true once a match is finished with scores; its status and scores
// no longer move backwards.
func (m Match) Locked() bool {
	return m.Status == StatusFinished && m.HasFinalScore()
}
