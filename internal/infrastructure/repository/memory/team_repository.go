package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/team"
)

type refKey struct {
	source     string
	externalID string
}

type TeamRepository struct {
	mu     sync.RWMutex
	nextID int64
	teams  map[int64]team.Team
	refs   map[refKey]int64
	now    func() time.Time
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	r := &TeamRepository{
		teams: make(map[int64]team.Team, len(teams)),
		refs:  make(map[refKey]int64, len(teams)),
		now:   time.Now,
	}
	for _, item := range teams {
		if item.ID > r.nextID {
			r.nextID = item.ID
		}
		r.teams[item.ID] = item
		r.refs[refKey{source: item.Source, externalID: item.ExternalID}] = item.ID
	}
	return r
}

func (r *TeamRepository) GetByID(_ context.Context, id int64) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[id]
	return item, ok, nil
}

func (r *TeamRepository) GetByExternalRef(_ context.Context, source, externalID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.refs[refKey{source: strings.TrimSpace(source), externalID: strings.TrimSpace(externalID)}]
	if !ok {
		return team.Team{}, false, nil
	}
	item, ok := r.teams[id]
	return item, ok, nil
}

func (r *TeamRepository) FindByNormalizedName(_ context.Context, normalizedName string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, 1)
	for _, item := range r.teams {
		if item.NormalizedName == normalizedName {
			out = append(out, item)
		}
	}
	sortTeams(out)
	return out, nil
}

func (r *TeamRepository) SearchByName(_ context.Context, fragment string, limit int) ([]team.Team, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0)
	for _, item := range r.teams {
		if team.ContainsWords(item.NormalizedName, fragment) {
			out = append(out, item)
		}
	}
	sortTeams(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *TeamRepository) ListAll(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.teams))
	for _, item := range r.teams {
		out = append(out, item)
	}
	sortTeams(out)
	return out, nil
}

func (r *TeamRepository) Create(_ context.Context, item team.Team, ref team.ExternalRef) (team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.teams {
		if existing.Source == item.Source && existing.ExternalID == item.ExternalID {
			return team.Team{}, fmt.Errorf("%w: external_id=%s", team.ErrConflict, item.ExternalID)
		}
	}
	key := refKey{source: ref.Source, externalID: ref.ExternalID}
	if _, taken := r.refs[key]; taken {
		return team.Team{}, fmt.Errorf("%w: ref=%s:%s", team.ErrConflict, ref.Source, ref.ExternalID)
	}

	r.nextID++
	now := r.now().UTC()
	item.ID = r.nextID
	item.CreatedAt = now
	item.UpdatedAt = now
	r.teams[item.ID] = item
	r.refs[key] = item.ID
	return item, nil
}

func (r *TeamRepository) LinkExternalRef(_ context.Context, ref team.ExternalRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.teams[ref.TeamID]; !ok {
		return fmt.Errorf("link ref %s:%s: team_id=%d does not exist", ref.Source, ref.ExternalID, ref.TeamID)
	}
	key := refKey{source: ref.Source, externalID: ref.ExternalID}
	if owner, taken := r.refs[key]; taken {
		if owner != ref.TeamID {
			return fmt.Errorf("%w: ref=%s:%s already links team_id=%d", team.ErrConflict, ref.Source, ref.ExternalID, owner)
		}
		return nil
	}
	r.refs[key] = ref.TeamID
	return nil
}

func (r *TeamRepository) UpdateDetails(_ context.Context, item team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.teams[item.ID]
	if !ok {
		return nil
	}
	enriched, changed := existing.Enrich(item)
	if changed {
		enriched.UpdatedAt = r.now().UTC()
		r.teams[item.ID] = enriched
	}
	return nil
}

// RefCount reports how many provider refs point to teamID.
func (r *TeamRepository) RefCount(teamID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, owner := range r.refs {
		if owner == teamID {
			n++
		}
	}
	return n
}

func sortTeams(items []team.Team) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
