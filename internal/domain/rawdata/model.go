package rawdata

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const (
	EntityCompetitionMatches = "competition_matches"
	EntityDailyMatches       = "daily_matches"
	EntityMatch              = "match"
	EntityCompetitions       = "competitions"
)

// Payload is one archived provider response, keyed by (source, entity type, entity key).
type Payload struct {
	Source      string
	EntityType  string
	EntityKey   string
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}

// NewPayload archives body and stamps its sha256 hash.
func NewPayload(source, entityType, entityKey string, body []byte, fetchedAt time.Time) Payload {
	sum := sha256.Sum256(body)
	return Payload{
		Source:      strings.TrimSpace(source),
		EntityType:  strings.TrimSpace(entityType),
		EntityKey:   strings.TrimSpace(entityKey),
		PayloadJSON: string(body),
		PayloadHash: hex.EncodeToString(sum[:]),
		FetchedAt:   fetchedAt.UTC(),
	}
}
