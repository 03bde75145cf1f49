package team

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrConflict is returned by repositories when a team or external ref already exists.
var ErrConflict = errors.New("team already exists")

// Team is the canonical record for one real-world club.
type Team struct {
	ID             int64
	ExternalID     string
	Source         string
	Name           string
	NormalizedName string
	ShortName      string
	Code           string
	Country        string
	CountryCode    string
	League         string
	LogoURL        string
	Website        string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExternalRef links a provider's native team id to a canonical team.
type ExternalRef struct {
	Source     string
	ExternalID string
	TeamID     int64
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.ExternalID) == "" {
		return fmt.Errorf("team external id is required")
	}
	if strings.TrimSpace(t.Source) == "" {
		return fmt.Errorf("team source is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	if strings.TrimSpace(t.NormalizedName) == "" {
		return fmt.Errorf("team normalized name is required")
	}

	return nil
}

// TaggedID builds the canonical external id, e.g. "football-data:65".
func TaggedID(source, nativeID string) string {
	return strings.TrimSpace(source) + ":" + strings.TrimSpace(nativeID)
}

// Enrich fills empty descriptive fields from other. Populated fields are never
// overwritten and identity fields are left alone.
func (t Team) Enrich(other Team) (Team, bool) {
	changed := false
	fill := func(dst *string, src string) {
		src = strings.TrimSpace(src)
		if strings.TrimSpace(*dst) == "" && src != "" {
			*dst = src
			changed = true
		}
	}

	fill(&t.ShortName, other.ShortName)
	fill(&t.Code, other.Code)
	fill(&t.Country, other.Country)
	fill(&t.CountryCode, other.CountryCode)
	fill(&t.League, other.League)
	fill(&t.LogoURL, other.LogoURL)
	fill(&t.Website, other.Website)

	return t, changed
}
