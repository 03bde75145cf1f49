package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/competition"
)

type CompetitionRepository struct {
	mu     sync.RWMutex
	nextID int64
	byCode map[string]competition.Competition
	now    func() time.Time
}

func NewCompetitionRepository() *CompetitionRepository {
	return &CompetitionRepository{
		byCode: make(map[string]competition.Competition),
		now:    time.Now,
	}
}

func (r *CompetitionRepository) UpsertMany(_ context.Context, items []competition.Competition) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	for _, item := range items {
		item.Code = competition.NormalizeCode(item.Code)
		if existing, ok := r.byCode[item.Code]; ok {
			item.ID = existing.ID
			item.CreatedAt = existing.CreatedAt
		} else {
			r.nextID++
			item.ID = r.nextID
			item.CreatedAt = now
		}
		item.UpdatedAt = now
		r.byCode[item.Code] = item
	}
	return len(items), nil
}

func (r *CompetitionRepository) List(_ context.Context) ([]competition.Competition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]competition.Competition, 0, len(r.byCode))
	for _, item := range r.byCode {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
