package competition

import "context"

// Repository stores the competition catalogue. UpsertMany keys on Code and
// returns how many rows were written.
type Repository interface {
	UpsertMany(ctx context.Context, items []Competition) (int, error)
	List(ctx context.Context) ([]Competition, error)
}
