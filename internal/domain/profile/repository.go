package profile

import "context"

// Repository exposes profile lookups and upserts.
type Repository interface {
	GetByUserID(ctx context.Context, userID string) (Profile, bool, error)
	ListByUserIDs(ctx context.Context, userIDs []string) ([]Profile, error)
	Upsert(ctx context.Context, p Profile) error
}
