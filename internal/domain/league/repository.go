package league

import "context"

// Repository describes league persistence needs from use cases. Membership
// order matters: ListMembers returns members sorted by join time so derived
// leaderboards keep a stable tiebreak.
type Repository interface {
	Create(ctx context.Context, l League) error
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (League, bool, error)
	ListPublic(ctx context.Context) ([]League, error)
	ListByUser(ctx context.Context, userID string) ([]League, error)
	AddMember(ctx context.Context, m Membership) error
	RemoveMember(ctx context.Context, leagueID, userID string) error
	IsMember(ctx context.Context, leagueID, userID string) (bool, error)
	ListMembers(ctx context.Context, leagueID string) ([]Membership, error)
}
