package match

import "strings"

// Combine merges two provider reports of the same fixture. The winner's value
// holds for every field it has; the loser only fills fields the winner left
// empty.
func Combine(winner, loser Match) Match {
	out := winner
	if out.HomeScore == nil && out.AwayScore == nil && out.Status == loser.Status {
		out.HomeScore, out.AwayScore = loser.HomeScore, loser.AwayScore
	}
	fillString(&out.Venue, loser.Venue)
	fillString(&out.Referee, loser.Referee)
	fillString(&out.CompetitionName, loser.CompetitionName)
	fillString(&out.Season, loser.Season)
	fillInt(&out.Attendance, loser.Attendance)
	fillInt(&out.Matchday, loser.Matchday)
	return out
}

// Yield folds a report from a lower-priority provider into a record owned by a
// higher-priority one. Conflicting fields keep the stored value. The status may
// still move forward while the stored record has no final score, since the
// owner may simply not have been re-fetched yet.
func Yield(stored, incoming Match) Match {
	out := Combine(stored, incoming)
	out.MatchDate = stored.MatchDate
	if stored.Locked() {
		return out
	}
	status, ok := Transition(stored.Status, incoming.Status)
	if !ok || status == stored.Status {
		return out
	}
	out.Status = status
	if incoming.HasFinalScore() {
		out.HomeScore, out.AwayScore = copyInt(incoming.HomeScore), copyInt(incoming.AwayScore)
	}
	return out
}

// UpdateResult describes what Apply did to a stored record.
type UpdateResult struct {
	Changed         bool
	StatusRefused   bool
	RefusedStatus   Status
	PreservedScores bool
}

// Apply folds a fresh report into the stored record. The stored identity
// (id, external id, source, highlight flag) is kept. Status follows Transition;
// scores are never cleared and do not change once the status update was
// refused.
func Apply(existing, incoming Match) (Match, UpdateResult) {
	var result UpdateResult
	out := existing

	status, ok := Transition(existing.Status, incoming.Status)
	out.Status = status
	if !ok {
		result.StatusRefused = true
		result.RefusedStatus = incoming.Status
	}

	if ok && incoming.HasFinalScore() {
		out.HomeScore, out.AwayScore = copyInt(incoming.HomeScore), copyInt(incoming.AwayScore)
	} else if existing.HasFinalScore() && !incoming.HasFinalScore() {
		result.PreservedScores = true
	}

	if ok && !incoming.MatchDate.IsZero() {
		out.MatchDate = incoming.MatchDate
	}
	replaceString(&out.Venue, incoming.Venue)
	replaceString(&out.Referee, incoming.Referee)
	replaceString(&out.CompetitionID, incoming.CompetitionID)
	replaceString(&out.CompetitionName, incoming.CompetitionName)
	replaceString(&out.Season, incoming.Season)
	if incoming.Attendance != nil {
		out.Attendance = copyInt(incoming.Attendance)
	}
	if incoming.Matchday != nil {
		out.Matchday = copyInt(incoming.Matchday)
	}

	result.Changed = !sameContent(existing, out)
	return out, result
}

func sameContent(a, b Match) bool {
	return a.Status == b.Status &&
		a.MatchDate.Equal(b.MatchDate) &&
		a.HomeTeamID == b.HomeTeamID &&
		a.AwayTeamID == b.AwayTeamID &&
		equalInt(a.HomeScore, b.HomeScore) &&
		equalInt(a.AwayScore, b.AwayScore) &&
		a.Venue == b.Venue &&
		a.Referee == b.Referee &&
		a.CompetitionID == b.CompetitionID &&
		a.CompetitionName == b.CompetitionName &&
		a.Season == b.Season &&
		equalInt(a.Attendance, b.Attendance) &&
		equalInt(a.Matchday, b.Matchday)
}

func fillString(dst *string, src string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = strings.TrimSpace(src)
	}
}

func replaceString(dst *string, src string) {
	if src = strings.TrimSpace(src); src != "" {
		*dst = src
	}
}

func fillInt(dst **int, src *int) {
	if *dst == nil && src != nil {
		*dst = copyInt(src)
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
