package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Team, bool, error)
	GetByExternalRef(ctx context.Context, source, externalID string) (Team, bool, error)
	FindByNormalizedName(ctx context.Context, normalizedName string) ([]Team, error)
	// SearchByName matches fragment against whole words of the normalized name.
	SearchByName(ctx context.Context, fragment string, limit int) ([]Team, error)
	ListAll(ctx context.Context) ([]Team, error)
	// Create inserts the team and its first external ref. A duplicate external
	// id or ref yields ErrConflict.
	Create(ctx context.Context, item Team, ref ExternalRef) (Team, error)
	LinkExternalRef(ctx context.Context, ref ExternalRef) error
	UpdateDetails(ctx context.Context, item Team) error
}
