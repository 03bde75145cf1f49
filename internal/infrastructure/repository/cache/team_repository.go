package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/matchsync/internal/domain/team"
	basecache "github.com/riskibarqy/matchsync/internal/platform/cache"
)

const teamKeyPrefix = "team:"

// TeamRepository caches team reads. Every write drops the whole team keyspace
// so a freshly created or linked team is visible on the next lookup.
type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (team.Team, bool, error) {
	key := teamKeyPrefix + "id:" + strconv.FormatInt(id, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedTeam{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeam)
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) GetByExternalRef(ctx context.Context, source, externalID string) (team.Team, bool, error) {
	key := teamKeyPrefix + "ref:" + source + ":" + externalID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByExternalRef(ctx, source, externalID)
		if err != nil {
			return nil, err
		}
		return cachedTeam{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeam)
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) FindByNormalizedName(ctx context.Context, normalizedName string) ([]team.Team, error) {
	key := teamKeyPrefix + "name:" + normalizedName
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.FindByNormalizedName(ctx, normalizedName)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) SearchByName(ctx context.Context, fragment string, limit int) ([]team.Team, error) {
	return r.next.SearchByName(ctx, fragment, limit)
}

func (r *TeamRepository) ListAll(ctx context.Context) ([]team.Team, error) {
	return r.next.ListAll(ctx)
}

func (r *TeamRepository) Create(ctx context.Context, item team.Team, ref team.ExternalRef) (team.Team, error) {
	created, err := r.next.Create(ctx, item, ref)
	r.cache.DeletePrefix(ctx, teamKeyPrefix)
	return created, err
}

func (r *TeamRepository) LinkExternalRef(ctx context.Context, ref team.ExternalRef) error {
	err := r.next.LinkExternalRef(ctx, ref)
	r.cache.DeletePrefix(ctx, teamKeyPrefix)
	return err
}

func (r *TeamRepository) UpdateDetails(ctx context.Context, item team.Team) error {
	err := r.next.UpdateDetails(ctx, item)
	r.cache.DeletePrefix(ctx, teamKeyPrefix)
	return err
}

type cachedTeam struct {
	value  team.Team
	exists bool
}
