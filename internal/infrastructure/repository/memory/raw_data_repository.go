package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/matchsync/internal/domain/rawdata"
)

type rawKey struct {
	source     string
	entityType string
	entityKey  string
}

type RawDataRepository struct {
	mu    sync.RWMutex
	items map[rawKey]rawdata.Payload
}

func NewRawDataRepository() *RawDataRepository {
	return &RawDataRepository{items: make(map[rawKey]rawdata.Payload)}
}

func (r *RawDataRepository) UpsertMany(_ context.Context, items []rawdata.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		key := rawKey{source: item.Source, entityType: item.EntityType, entityKey: item.EntityKey}
		if existing, ok := r.items[key]; ok && existing.PayloadHash == item.PayloadHash {
			continue
		}
		r.items[key] = item
	}
	return nil
}

func (r *RawDataRepository) Get(source, entityType, entityKey string) (rawdata.Payload, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[rawKey{source: source, entityType: entityType, entityKey: entityKey}]
	return item, ok
}

func (r *RawDataRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
