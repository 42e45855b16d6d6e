package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/matchcall/predictor-league/internal/domain/league"
)

// Duplicate errors mimic the postgres unique violation text because use
// cases classify conflicts by that message.
var (
	errDuplicateLeague     = errors.New(`duplicate key value violates unique constraint "leagues_invite_code_key"`)
	errDuplicateMembership = errors.New(`duplicate key value violates unique constraint "league_members_active_key"`)
)

type LeagueRepository struct {
	mu      sync.RWMutex
	order   []string
	leagues map[string]league.League
	members map[string][]league.Membership
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{
		leagues: make(map[string]league.League),
		members: make(map[string][]league.Membership),
	}
}

func (r *LeagueRepository) Create(_ context.Context, l league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.leagues[l.ID]; exists {
		return errDuplicateLeague
	}
	if l.InviteCode != "" {
		for _, existing := range r.leagues {
			if existing.InviteCode == l.InviteCode {
				return errDuplicateLeague
			}
		}
	}

	r.order = append(r.order, l.ID)
	r.leagues[l.ID] = l
	return nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.leagues[leagueID]
	return l, ok, nil
}

func (r *LeagueRepository) GetByInviteCode(_ context.Context, inviteCode string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if l := r.leagues[id]; l.InviteCode == inviteCode {
			return l, true, nil
		}
	}
	return league.League{}, false, nil
}

func (r *LeagueRepository) ListPublic(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []league.League
	for _, id := range r.order {
		if l := r.leagues[id]; !l.IsPrivate() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *LeagueRepository) ListByUser(_ context.Context, userID string) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []league.League
	for _, id := range r.order {
		for _, m := range r.members[id] {
			if m.UserID == userID {
				out = append(out, r.leagues[id])
				break
			}
		}
	}
	return out, nil
}

func (r *LeagueRepository) AddMember(_ context.Context, m league.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.members[m.LeagueID] {
		if existing.UserID == m.UserID {
			return errDuplicateMembership
		}
	}
	r.members[m.LeagueID] = append(r.members[m.LeagueID], m)
	return nil
}

func (r *LeagueRepository) RemoveMember(_ context.Context, leagueID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.members[leagueID]
	for i, m := range members {
		if m.UserID == userID {
			r.members[leagueID] = append(members[:i:i], members[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *LeagueRepository) IsMember(_ context.Context, leagueID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.members[leagueID] {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// ListMembers returns members in join order. Leaderboards rely on this order
// for their tiebreak, so it stays stable across calls.
func (r *LeagueRepository) ListMembers(_ context.Context, leagueID string) ([]league.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.members[leagueID]
	out := make([]league.Membership, len(members))
	copy(out, members)
	return out, nil
}
