package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/match"
)

// MatchRepository keeps matches in memory and rejects rows whose teams are
// unknown to teams, the same way the foreign keys do in postgres.
type MatchRepository struct {
	mu         sync.RWMutex
	nextID     int64
	byExternal map[string]match.Match
	teams      *TeamRepository
	now        func() time.Time
}

func NewMatchRepository(teams *TeamRepository) *MatchRepository {
	return &MatchRepository{
		byExternal: make(map[string]match.Match),
		teams:      teams,
		now:        time.Now,
	}
}

func (r *MatchRepository) GetByExternalID(_ context.Context, externalID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byExternal[strings.TrimSpace(externalID)]
	return item, ok, nil
}

func (r *MatchRepository) FindByTeamsAndDate(_ context.Context, homeTeamID, awayTeamID int64, day time.Time) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := match.MergeDay(day)
	var (
		found match.Match
		ok    bool
	)
	for _, item := range r.byExternal {
		if item.HomeTeamID != homeTeamID || item.AwayTeamID != awayTeamID {
			continue
		}
		if !match.MergeDay(item.MatchDate).Equal(want) {
			continue
		}
		if !ok || item.ID < found.ID {
			found, ok = item, true
		}
	}
	return found, ok, nil
}

func (r *MatchRepository) UpsertMany(ctx context.Context, items []match.Match) (match.UpsertResult, error) {
	var result match.UpsertResult
	if len(items) == 0 {
		return result, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if err := r.checkTeams(ctx, item); err != nil {
			result.Failures = append(result.Failures, match.UpsertFailure{ExternalID: item.ExternalID, Err: err})
			continue
		}

		now := r.now().UTC()
		existing, ok := r.byExternal[item.ExternalID]
		if !ok {
			r.nextID++
			item.ID = r.nextID
			item.MatchDate = item.MatchDate.UTC()
			item.HighlightProcessed = false
			item.CreatedAt = now
			item.UpdatedAt = now
			r.byExternal[item.ExternalID] = item
			result.Stored++
			continue
		}

		r.byExternal[item.ExternalID] = overwriteStored(existing, item, now)
		result.Stored++
	}
	return result, nil
}

func (r *MatchRepository) ListByStatusBetween(_ context.Context, statuses []match.Status, from, to time.Time) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[match.Status]struct{}, len(statuses))
	for _, status := range statuses {
		wanted[status] = struct{}{}
	}

	out := make([]match.Match, 0)
	for _, item := range r.byExternal {
		if item.MatchDate.Before(from) || !item.MatchDate.Before(to) {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[item.Status]; !ok {
				continue
			}
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MatchDate.Equal(out[j].MatchDate) {
			return out[i].MatchDate.Before(out[j].MatchDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MatchRepository) ListPendingHighlights(_ context.Context, limit int) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.byExternal {
		if item.Status == match.StatusFinished && item.HasFinalScore() && !item.HighlightProcessed {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MatchDate.Equal(out[j].MatchDate) {
			return out[i].MatchDate.After(out[j].MatchDate)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MatchRepository) MarkHighlightsProcessed(_ context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	now := r.now().UTC()
	for key, item := range r.byExternal {
		if _, ok := want[item.ID]; !ok {
			continue
		}
		item.HighlightProcessed = true
		item.UpdatedAt = now
		r.byExternal[key] = item
		n++
	}
	return n, nil
}

// Len is the number of stored matches.
func (r *MatchRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byExternal)
}

func (r *MatchRepository) checkTeams(ctx context.Context, item match.Match) error {
	if r.teams == nil {
		return nil
	}
	for _, id := range []int64{item.HomeTeamID, item.AwayTeamID} {
		_, ok, err := r.teams.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: team_id=%d", match.ErrMissingTeamReference, id)
		}
	}
	return nil
}

// overwriteStored mirrors the postgres upsert: terminal rows keep their status
// and empty incoming values never clear stored ones.
func overwriteStored(existing, incoming match.Match, now time.Time) match.Match {
	out := existing
	if owner := strings.TrimSpace(incoming.OwnerExternalID); owner != "" {
		out.OwnerExternalID = owner
	}
	out.HomeTeamID = incoming.HomeTeamID
	out.AwayTeamID = incoming.AwayTeamID
	out.MatchDate = incoming.MatchDate.UTC()
	if status, ok := match.Transition(existing.Status, incoming.Status); ok {
		out.Status = status
	}
	if incoming.HomeScore != nil {
		out.HomeScore = incoming.HomeScore
	}
	if incoming.AwayScore != nil {
		out.AwayScore = incoming.AwayScore
	}
	keep := func(dst *string, src string) {
		if strings.TrimSpace(src) != "" {
			*dst = src
		}
	}
	keep(&out.CompetitionID, incoming.CompetitionID)
	keep(&out.CompetitionName, incoming.CompetitionName)
	keep(&out.Venue, incoming.Venue)
	keep(&out.Referee, incoming.Referee)
	keep(&out.Season, incoming.Season)
	if incoming.Attendance != nil {
		out.Attendance = incoming.Attendance
	}
	if incoming.Matchday != nil {
		out.Matchday = incoming.Matchday
	}
	out.UpdatedAt = now
	return out
}
