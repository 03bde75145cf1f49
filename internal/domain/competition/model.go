package competition

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalid = errors.New("invalid competition")

type Type string

const (
	TypeLeague   Type = "league"
	TypeCup      Type = "cup"
	TypePlayoffs Type = "playoffs"
	TypeOther    Type = "other"
)

// Competition is identified by an opaque upper-case code such as "PL" or "CL".
// ExternalID is the tagged id of the provider that described it.
type Competition struct {
	ID              int64
	Code            string
	ExternalID      string
	Source          string
	Name            string
	Type            Type
	AreaName        string
	AreaCode        string
	EmblemURL       string
	CurrentSeason   string
	CurrentMatchday *int
	SeasonStart     *time.Time
	SeasonEnd       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (c Competition) Validate() error {
	if NormalizeCode(c.Code) == "" {
		return fmt.Errorf("%w: code is required", ErrInvalid)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if strings.TrimSpace(c.Source) == "" || strings.TrimSpace(c.ExternalID) == "" {
		return fmt.Errorf("%w: source and external id are required", ErrInvalid)
	}
	return nil
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeType maps provider competition types ("LEAGUE", "Cup", ...) to Type.
func NormalizeType(raw string) Type {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "LEAGUE":
		return TypeLeague
	case "CUP", "SUPER_CUP", "SUPERCUP":
		return TypeCup
	case "PLAYOFFS", "PLAYOFF":
		return TypePlayoffs
	default:
		return TypeOther
	}
}
