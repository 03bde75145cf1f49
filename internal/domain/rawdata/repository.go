package rawdata

import "context"

// Repository archives provider responses. UpsertMany keys on
// (Source, EntityType, EntityKey) and leaves rows with an unchanged hash alone.
type Repository interface {
	UpsertMany(ctx context.Context, items []Payload) error
}
