package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/match"
)

type matchTableModel struct {
	ID                 int64         `db:"id"`
	ExternalID         string        `db:"external_id"`
	Source             string        `db:"source"`
	OwnerExternalID    *string       `db:"owner_external_id"`
	HomeTeamID         int64         `db:"home_team_id"`
	AwayTeamID         int64         `db:"away_team_id"`
	MatchDate          time.Time     `db:"match_date"`
	Status             string        `db:"status"`
	HomeScore          sql.NullInt64 `db:"home_score"`
	AwayScore          sql.NullInt64 `db:"away_score"`
	CompetitionID      *string       `db:"competition_id"`
	CompetitionName    *string       `db:"competition_name"`
	Venue              *string       `db:"venue"`
	Referee            *string       `db:"referee"`
	Attendance         sql.NullInt64 `db:"attendance"`
	Matchday           sql.NullInt64 `db:"matchday"`
	Season             *string       `db:"season"`
	HighlightProcessed bool          `db:"highlight_processed"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

type matchInsertModel struct {
	ExternalID      string        `db:"external_id"`
	Source          string        `db:"source"`
	OwnerExternalID *string       `db:"owner_external_id"`
	HomeTeamID      int64         `db:"home_team_id"`
	AwayTeamID      int64         `db:"away_team_id"`
	MatchDate       time.Time     `db:"match_date"`
	Status          string        `db:"status"`
	HomeScore       sql.NullInt64 `db:"home_score"`
	AwayScore       sql.NullInt64 `db:"away_score"`
	CompetitionID   *string       `db:"competition_id"`
	CompetitionName *string       `db:"competition_name"`
	Venue           *string       `db:"venue"`
	Referee         *string       `db:"referee"`
	Attendance      sql.NullInt64 `db:"attendance"`
	Matchday        sql.NullInt64 `db:"matchday"`
	Season          *string       `db:"season"`
}

var matchColumns = []string{
	"id", "external_id", "source", "owner_external_id", "home_team_id", "away_team_id", "match_date", "status",
	"home_score", "away_score", "competition_id", "competition_name", "venue", "referee",
	"attendance", "matchday", "season", "highlight_processed", "created_at", "updated_at",
}

// matchUpsertSuffix keeps terminal statuses and never clears stored values
// with empty ones.
const matchUpsertSuffix = `ON CONFLICT (external_id) DO UPDATE SET
    owner_external_id = COALESCE(EXCLUDED.owner_external_id, matches.owner_external_id),
    home_team_id = EXCLUDED.home_team_id,
    away_team_id = EXCLUDED.away_team_id,
    match_date = EXCLUDED.match_date,
    status = CASE
        WHEN matches.status IN ('finished', 'postponed', 'cancelled') THEN matches.status
        WHEN matches.status = 'live' AND EXCLUDED.status = 'scheduled' THEN matches.status
        ELSE EXCLUDED.status
    END,
    home_score = COALESCE(EXCLUDED.home_score, matches.home_score),
    away_score = COALESCE(EXCLUDED.away_score, matches.away_score),
    competition_id = COALESCE(EXCLUDED.competition_id, matches.competition_id),
    competition_name = COALESCE(EXCLUDED.competition_name, matches.competition_name),
    venue = COALESCE(EXCLUDED.venue, matches.venue),
    referee = COALESCE(EXCLUDED.referee, matches.referee),
    attendance = COALESCE(EXCLUDED.attendance, matches.attendance),
    matchday = COALESCE(EXCLUDED.matchday, matches.matchday),
    season = COALESCE(EXCLUDED.season, matches.season),
    updated_at = NOW()`

func (m matchTableModel) toDomain() match.Match {
	return match.Match{
		ID:                 m.ID,
		ExternalID:         m.ExternalID,
		Source:             m.Source,
		OwnerExternalID:    stringValue(m.OwnerExternalID),
		HomeTeamID:         m.HomeTeamID,
		AwayTeamID:         m.AwayTeamID,
		MatchDate:          m.MatchDate.UTC(),
		Status:             match.Status(m.Status),
		HomeScore:          nullInt64ToIntPtr(m.HomeScore),
		AwayScore:          nullInt64ToIntPtr(m.AwayScore),
		CompetitionID:      stringValue(m.CompetitionID),
		CompetitionName:    stringValue(m.CompetitionName),
		Venue:              stringValue(m.Venue),
		Referee:            stringValue(m.Referee),
		Attendance:         nullInt64ToIntPtr(m.Attendance),
		Matchday:           nullInt64ToIntPtr(m.Matchday),
		Season:             stringValue(m.Season),
		HighlightProcessed: m.HighlightProcessed,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func newMatchInsertModel(item match.Match) matchInsertModel {
	return matchInsertModel{
		ExternalID:      item.ExternalID,
		Source:          item.Source,
		OwnerExternalID: nullableString(item.OwnerID()),
		HomeTeamID:      item.HomeTeamID,
		AwayTeamID:      item.AwayTeamID,
		MatchDate:       item.MatchDate.UTC(),
		Status:          string(item.Status),
		HomeScore:       intPtrToNullInt64(item.HomeScore),
		AwayScore:       intPtrToNullInt64(item.AwayScore),
		CompetitionID:   nullableString(item.CompetitionID),
		CompetitionName: nullableString(item.CompetitionName),
		Venue:           nullableString(item.Venue),
		Referee:         nullableString(item.Referee),
		Attendance:      intPtrToNullInt64(item.Attendance),
		Matchday:        intPtrToNullInt64(item.Matchday),
		Season:          nullableString(item.Season),
	}
}
