package postgres

import (
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/team"
)

type teamTableModel struct {
	ID             int64     `db:"id"`
	ExternalID     string    `db:"external_id"`
	Source         string    `db:"source"`
	Name           string    `db:"name"`
	NormalizedName string    `db:"normalized_name"`
	ShortName      *string   `db:"short_name"`
	Code           *string   `db:"code"`
	Country        *string   `db:"country"`
	CountryCode    *string   `db:"country_code"`
	League         *string   `db:"league"`
	LogoURL        *string   `db:"logo_url"`
	Website        *string   `db:"website"`
	IsActive       bool      `db:"is_active"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type teamInsertModel struct {
	ExternalID     string  `db:"external_id"`
	Source         string  `db:"source"`
	Name           string  `db:"name"`
	NormalizedName string  `db:"normalized_name"`
	ShortName      *string `db:"short_name"`
	Code           *string `db:"code"`
	Country        *string `db:"country"`
	CountryCode    *string `db:"country_code"`
	League         *string `db:"league"`
	LogoURL        *string `db:"logo_url"`
	Website        *string `db:"website"`
	IsActive       bool    `db:"is_active"`
}

type teamExternalRefInsertModel struct {
	Source     string `db:"source"`
	ExternalID string `db:"external_id"`
	TeamID     int64  `db:"team_id"`
}

var teamColumns = []string{
	"t.id", "t.external_id", "t.source", "t.name", "t.normalized_name", "t.short_name", "t.code",
	"t.country", "t.country_code", "t.league", "t.logo_url", "t.website", "t.is_active",
	"t.created_at", "t.updated_at",
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:             m.ID,
		ExternalID:     m.ExternalID,
		Source:         m.Source,
		Name:           m.Name,
		NormalizedName: m.NormalizedName,
		ShortName:      stringValue(m.ShortName),
		Code:           stringValue(m.Code),
		Country:        stringValue(m.Country),
		CountryCode:    stringValue(m.CountryCode),
		League:         stringValue(m.League),
		LogoURL:        stringValue(m.LogoURL),
		Website:        stringValue(m.Website),
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func newTeamInsertModel(item team.Team) teamInsertModel {
	return teamInsertModel{
		ExternalID:     item.ExternalID,
		Source:         item.Source,
		Name:           item.Name,
		NormalizedName: item.NormalizedName,
		ShortName:      nullableString(item.ShortName),
		Code:           nullableString(item.Code),
		Country:        nullableString(item.Country),
		CountryCode:    nullableString(item.CountryCode),
		League:         nullableString(item.League),
		LogoURL:        nullableString(item.LogoURL),
		Website:        nullableString(item.Website),
		IsActive:       item.IsActive,
	}
}
