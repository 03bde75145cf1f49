package match

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestApply_FinishedNeverReverts(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	existing := Match{
		ID:         7,
		ExternalID: ExternalID(SourceFootballData, "1001"),
		Source:     SourceFootballData,
		HomeTeamID: 1,
		AwayTeamID: 2,
		MatchDate:  kickoff,
		Status:     StatusFinished,
		HomeScore:  intPtr(2),
		AwayScore:  intPtr(1),
	}
	incoming := Match{
		ExternalID: existing.ExternalID,
		Source:     SourceFootballData,
		HomeTeamID: 1,
		AwayTeamID: 2,
		MatchDate:  kickoff.Add(time.Hour),
		Status:     StatusScheduled,
		Venue:      "Emirates Stadium",
	}

	got, result := Apply(existing, incoming)
	if got.Status != StatusFinished {
		t.Fatalf("expected status finished, got=%s", got.Status)
	}
	if got.HomeScore == nil || *got.HomeScore != 2 || got.AwayScore == nil || *got.AwayScore != 1 {
		t.Fatalf("expected scores 2-1 to be preserved, got=%v-%v", got.HomeScore, got.AwayScore)
	}
	if !got.MatchDate.Equal(kickoff) {
		t.Fatalf("expected kickoff to stay %s, got=%s", kickoff, got.MatchDate)
	}
	if got.Venue != "Emirates Stadium" {
		t.Fatalf("expected venue to update, got=%s", got.Venue)
	}
	if !result.StatusRefused || result.RefusedStatus != StatusScheduled || !result.PreservedScores {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !result.Changed {
		t.Fatalf("expected changed=true because venue was filled")
	}
	if got.ID != 7 || got.ExternalID != existing.ExternalID {
		t.Fatalf("expected identity to be kept, got id=%d external_id=%s", got.ID, got.ExternalID)
	}
}

func TestApply_IdenticalIsUnchanged(t *testing.T) {
	t.Parallel()

	m := Match{
		ID:         1,
		ExternalID: "football-data:1",
		HomeTeamID: 1,
		AwayTeamID: 2,
		MatchDate:  time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC),
		Status:     StatusLive,
		HomeScore:  intPtr(0),
		AwayScore:  intPtr(0),
		Venue:      "Anfield",
	}
	_, result := Apply(m, m)
	if result.Changed {
		t.Fatalf("expected identical report to be unchanged")
	}
}

func TestApply_LiveToFinishedTakesScores(t *testing.T) {
	t.Parallel()

	existing := Match{Status: StatusLive, HomeScore: intPtr(1), AwayScore: intPtr(0)}
	got, result := Apply(existing, Match{Status: StatusFinished, HomeScore: intPtr(1), AwayScore: intPtr(1)})
	if got.Status != StatusFinished || *got.AwayScore != 1 {
		t.Fatalf("expected finished 1-1, got=%s %v-%v", got.Status, *got.HomeScore, *got.AwayScore)
	}
	if result.StatusRefused || !result.Changed {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCombine_WinnerKeepsConflictingFields(t *testing.T) {
	t.Parallel()

	winner := Match{
		Source:    SourceFootballData,
		Status:    StatusFinished,
		HomeScore: intPtr(2),
		AwayScore: intPtr(1),
		Venue:     "Old Trafford",
	}
	loser := Match{
		Source:     SourceAPIFootball,
		Status:     StatusScheduled,
		Venue:      "Theatre of Dreams",
		Referee:    "M. Oliver",
		Attendance: intPtr(73000),
	}

	got := Combine(winner, loser)
	if got.Status != StatusFinished || *got.HomeScore != 2 || *got.AwayScore != 1 {
		t.Fatalf("expected winner finished 2-1, got=%s", got.Status)
	}
	if got.Venue != "Old Trafford" {
		t.Fatalf("expected winner venue, got=%s", got.Venue)
	}
	if got.Referee != "M. Oliver" || got.Attendance == nil || *got.Attendance != 73000 {
		t.Fatalf("expected empty winner fields filled from loser, got referee=%s", got.Referee)
	}
	if got.Source != SourceFootballData {
		t.Fatalf("expected winner source, got=%s", got.Source)
	}
}

func TestCombine_DoesNotBlendScoresAcrossStatuses(t *testing.T) {
	t.Parallel()

	winner := Match{Status: StatusScheduled}
	loser := Match{Status: StatusFinished, HomeScore: intPtr(3), AwayScore: intPtr(0)}

	got := Combine(winner, loser)
	if got.HomeScore != nil || got.AwayScore != nil {
		t.Fatalf("expected loser scores to be discarded, got=%v-%v", got.HomeScore, got.AwayScore)
	}
}

func TestExternalIDRoundTrip(t *testing.T) {
	t.Parallel()

	source, native, ok := SplitExternalID(ExternalID(SourceAPIFootball, "1035037"))
	if !ok || source != SourceAPIFootball || native != "1035037" {
		t.Fatalf("unexpected split: %s %s %v", source, native, ok)
	}
	if _, _, ok := SplitExternalID("1035037"); ok {
		t.Fatalf("expected untagged id to fail")
	}
}

func TestMergeDay_UsesUTCDate(t *testing.T) {
	t.Parallel()

	jakarta := time.FixedZone("WIB", 7*3600)
	kickoff := time.Date(2026, 3, 2, 2, 30, 0, 0, jakarta)
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := MergeDay(kickoff); !got.Equal(want) {
		t.Fatalf("expected %s, got=%s", want, got)
	}
}

func TestYield_KeepsOwnerFieldsAndFillsGaps(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	stored := Match{
		ID:         3,
		ExternalID: ExternalID(SourceFootballData, "1001"),
		Source:     SourceFootballData,
		MatchDate:  kickoff,
		Status:     StatusFinished,
		HomeScore:  intPtr(2),
		AwayScore:  intPtr(1),
		Venue:      "Etihad Stadium",
	}
	incoming := Match{
		ExternalID: ExternalID(SourceAPIFootball, "9001"),
		Source:     SourceAPIFootball,
		MatchDate:  kickoff.Add(30 * time.Minute),
		Status:     StatusFinished,
		HomeScore:  intPtr(3),
		AwayScore:  intPtr(1),
		Venue:      "City of Manchester Stadium",
		Referee:    "Michael Oliver",
	}

	got := Yield(stored, incoming)
	if got.Venue != "Etihad Stadium" {
		t.Fatalf("expected stored venue to win, got=%s", got.Venue)
	}
	if got.Referee != "Michael Oliver" {
		t.Fatalf("expected empty referee to be filled, got=%s", got.Referee)
	}
	if *got.HomeScore != 2 || !got.MatchDate.Equal(kickoff) {
		t.Fatalf("expected stored score and kickoff, got=%d %s", *got.HomeScore, got.MatchDate)
	}
	if got.ExternalID != stored.ExternalID {
		t.Fatalf("expected identity to stay with the owner, got=%s", got.ExternalID)
	}
}

func TestYield_AdvancesStatusBeforeOwnerFinishes(t *testing.T) {
	t.Parallel()

	stored := Match{Status: StatusScheduled}
	got := Yield(stored, Match{Status: StatusFinished, HomeScore: intPtr(0), AwayScore: intPtr(0)})
	if got.Status != StatusFinished || !got.HasFinalScore() {
		t.Fatalf("expected finished 0-0, got=%s %v-%v", got.Status, got.HomeScore, got.AwayScore)
	}

	live := Yield(Match{Status: StatusLive}, Match{Status: StatusScheduled})
	if live.Status != StatusLive {
		t.Fatalf("expected live to be kept, got=%s", live.Status)
	}
}
