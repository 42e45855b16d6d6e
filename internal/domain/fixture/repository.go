package fixture

import "context"

// Repository exposes fixture persistence operations.
type Repository interface {
	List(ctx context.Context) ([]Fixture, error)
	ListByMatchday(ctx context.Context, matchday int) ([]Fixture, error)
	GetByID(ctx context.Context, id string) (Fixture, bool, error)
	Upsert(ctx context.Context, fixtures []Fixture) error
}
