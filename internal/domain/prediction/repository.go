package prediction

import "context"

// Repository exposes prediction persistence operations. Upsert is keyed on
// (UserID, FixtureID) so concurrent submissions resolve last-write-wins.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Prediction, error)
	ListByUsers(ctx context.Context, userIDs []string) ([]Prediction, error)
	ListByUserAndFixtures(ctx context.Context, userID string, fixtureIDs []string) ([]Prediction, error)
	Upsert(ctx context.Context, p Prediction) (Prediction, error)
}
