package httpapi

import (
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/competition"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/team"
)

type matchDTO struct {
	ID                 int64     `json:"id"`
	ExternalID         string    `json:"external_id"`
	Source             string    `json:"source"`
	HomeTeamID         int64     `json:"home_team_id"`
	AwayTeamID         int64     `json:"away_team_id"`
	MatchDate          time.Time `json:"match_date"`
	Status             string    `json:"status"`
	HomeScore          *int      `json:"home_score"`
	AwayScore          *int      `json:"away_score"`
	CompetitionID      string    `json:"competition_id,omitempty"`
	CompetitionName    string    `json:"competition_name,omitempty"`
	Venue              string    `json:"venue,omitempty"`
	Referee            string    `json:"referee,omitempty"`
	Attendance         *int      `json:"attendance,omitempty"`
	Matchday           *int      `json:"matchday,omitempty"`
	Season             string    `json:"season,omitempty"`
	HighlightProcessed bool      `json:"highlight_processed"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type teamDTO struct {
	ID             int64  `json:"id"`
	ExternalID     string `json:"external_id"`
	Source         string `json:"source"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`
	ShortName      string `json:"short_name,omitempty"`
	Code           string `json:"code,omitempty"`
	Country        string `json:"country,omitempty"`
	League         string `json:"league,omitempty"`
	LogoURL        string `json:"logo_url,omitempty"`
	IsActive       bool   `json:"is_active"`
}

type competitionDTO struct {
	Code            string     `json:"code"`
	ExternalID      string     `json:"external_id"`
	Source          string     `json:"source"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	AreaName        string     `json:"area_name,omitempty"`
	AreaCode        string     `json:"area_code,omitempty"`
	EmblemURL       string     `json:"emblem_url,omitempty"`
	CurrentSeason   string     `json:"current_season,omitempty"`
	CurrentMatchday *int       `json:"current_matchday,omitempty"`
	SeasonStart     *time.Time `json:"season_start,omitempty"`
	SeasonEnd       *time.Time `json:"season_end,omitempty"`
}

type duplicateGroupDTO struct {
	Key   string    `json:"key"`
	Teams []teamDTO `json:"teams"`
}

func matchToDTO(item match.Match) matchDTO {
	return matchDTO{
		ID:                 item.ID,
		ExternalID:         item.ExternalID,
		Source:             item.Source,
		HomeTeamID:         item.HomeTeamID,
		AwayTeamID:         item.AwayTeamID,
		MatchDate:          item.MatchDate.UTC(),
		Status:             string(item.Status),
		HomeScore:          item.HomeScore,
		AwayScore:          item.AwayScore,
		CompetitionID:      item.CompetitionID,
		CompetitionName:    item.CompetitionName,
		Venue:              item.Venue,
		Referee:            item.Referee,
		Attendance:         item.Attendance,
		Matchday:           item.Matchday,
		Season:             item.Season,
		HighlightProcessed: item.HighlightProcessed,
		UpdatedAt:          item.UpdatedAt.UTC(),
	}
}

func teamToDTO(item team.Team) teamDTO {
	return teamDTO{
		ID:             item.ID,
		ExternalID:     item.ExternalID,
		Source:         item.Source,
		Name:           item.Name,
		NormalizedName: item.NormalizedName,
		ShortName:      item.ShortName,
		Code:           item.Code,
		Country:        item.Country,
		League:         item.League,
		LogoURL:        item.LogoURL,
		IsActive:       item.IsActive,
	}
}

func competitionToDTO(item competition.Competition) competitionDTO {
	return competitionDTO{
		Code:            item.Code,
		ExternalID:      item.ExternalID,
		Source:          item.Source,
		Name:            item.Name,
		Type:            string(item.Type),
		AreaName:        item.AreaName,
		AreaCode:        item.AreaCode,
		EmblemURL:       item.EmblemURL,
		CurrentSeason:   item.CurrentSeason,
		CurrentMatchday: item.CurrentMatchday,
		SeasonStart:     item.SeasonStart,
		SeasonEnd:       item.SeasonEnd,
	}
}
