package chat

import "context"

// Repository exposes league message persistence.
type Repository interface {
	ListByLeague(ctx context.Context, leagueID string, limit int) ([]Message, error)
	Create(ctx context.Context, m Message) error
}
